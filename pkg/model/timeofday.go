package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	TimeLayout = "15:04"
	DateLayout = "2006-01-02"

	// MinutesPerDay is the exclusive upper bound of a day's time axis.
	MinutesPerDay = 1440
)

// ParseMinuteOfDay converts an "HH:MM" string to minutes from midnight.
func ParseMinuteOfDay(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// ParseEndMinute parses an "HH:MM" end-of-range value. "00:00" means
// end-of-day (minute 1440), never midnight-start, so ranges closing at
// midnight keep a positive length.
func ParseEndMinute(s string) (int, error) {
	min, err := ParseMinuteOfDay(s)
	if err != nil {
		return 0, err
	}
	if min == 0 {
		return MinutesPerDay, nil
	}
	return min, nil
}

// FormatMinuteOfDay renders minutes from midnight as "HH:MM".
// Minute 1440 wraps back to "00:00".
func FormatMinuteOfDay(min int) string {
	if min >= MinutesPerDay {
		min -= MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// WeekdayName is the canonical lowercase weekday used across models.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
