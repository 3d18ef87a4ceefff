package service

import (
	"fmt"
	"time"

	"pitchside/pkg/model"
)

// Increment is one canonical grid cell, minutes from midnight, half-open.
type Increment struct {
	StartMin int
	EndMin   int
}

// ExclusionWindow is an ad-hoc maintenance range subtracted from a day's
// open increments for summary purposes.
type ExclusionWindow struct {
	StartMin int
	EndMin   int
}

// Granularity returns the facility's canonical slot length, falling back to
// the service default when unset.
func Granularity(f *model.Facility, fallback int) int {
	if f != nil && f.SlotGranularityMin > 0 {
		return f.SlotGranularityMin
	}
	return fallback
}

// BoundariesFor derives the ordered canonical increments for a facility day
// from its opening window, preferring a date-specific override. A close time
// of "00:00" means end of day, so a facility open until midnight yields
// increments up to minute 1440.
func BoundariesFor(f *model.Facility, date time.Time, fallbackGranularity int) ([]Increment, error) {
	hours := f.HoursOn(date)
	if hours.Closed || hours.Open == "" || hours.Close == "" {
		return nil, nil
	}

	openMin, err := model.ParseMinuteOfDay(hours.Open)
	if err != nil {
		return nil, fmt.Errorf("invalid opening time for %s: %w", date.Format(model.DateLayout), err)
	}
	closeMin, err := model.ParseEndMinute(hours.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid closing time for %s: %w", date.Format(model.DateLayout), err)
	}
	if closeMin <= openMin {
		return nil, fmt.Errorf("closing time %s is not after opening time %s", hours.Close, hours.Open)
	}

	step := Granularity(f, fallbackGranularity)

	var out []Increment
	for cur := openMin; cur+step <= closeMin; cur += step {
		out = append(out, Increment{StartMin: cur, EndMin: cur + step})
	}
	return out, nil
}

// AlignedToGrid reports whether a minute value sits on a canonical boundary.
func AlignedToGrid(min, granularity int) bool {
	return min%granularity == 0
}

// OpenIncrementCount counts the increments left after subtracting exclusion
// windows. Feeds day summaries and batch-open estimates; an increment is
// excluded as soon as a window touches it.
func OpenIncrementCount(bounds []Increment, exclusions []ExclusionWindow) int {
	count := 0
	for _, inc := range bounds {
		excluded := false
		for _, w := range exclusions {
			if Overlaps(inc.StartMin, inc.EndMin, w.StartMin, w.EndMin) {
				excluded = true
				break
			}
		}
		if !excluded {
			count++
		}
	}
	return count
}
