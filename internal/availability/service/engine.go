package service

import (
	"fmt"

	"pitchside/pkg/clock"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"
)

// Engine answers "is this exact range bookable" and "which end times are
// reachable from this start" over a caller-supplied snapshot. All methods are
// pure apart from clock reads for lazy hold expiry.
type Engine struct {
	clock              clock.Clock
	defaultGranularity int
	log                *logger.Logger
}

func NewEngine(clk clock.Clock, defaultGranularity int, log *logger.Logger) *Engine {
	return &Engine{
		clock:              clk,
		defaultGranularity: defaultGranularity,
		log:                log,
	}
}

// DayStatus resolves every canonical increment of the day for calendar
// rendering. sessionID marks which funding session is asking, so its own
// holds do not show as blocked.
func (e *Engine) DayStatus(snap *Snapshot, sessionID string) ([]SlotView, error) {
	bounds, err := BoundariesFor(snap.Facility, snap.Date, e.defaultGranularity)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := e.clock.Now()
	views := make([]SlotView, 0, len(bounds))
	for _, inc := range bounds {
		status, reason := snap.resolveStatus(inc, now, sessionID)
		views = append(views, SlotView{
			Start:  model.FormatMinuteOfDay(inc.StartMin),
			End:    model.FormatMinuteOfDay(inc.EndMin),
			Status: status,
			Reason: reason,
		})
	}

	e.log.Debug("Resolved day status",
		"facility_id", snap.Facility.ID,
		"date", snap.Date.Format(model.DateLayout),
		"increments", len(views),
	)
	return views, nil
}

// OpenCount folds resolved views back onto the canonical grid: every
// non-available increment becomes an exclusion window over the day's bounds.
// views must come from DayStatus over the same snapshot, so index i of views
// describes bounds[i].
func (e *Engine) OpenCount(snap *Snapshot, views []SlotView) (int, error) {
	bounds, err := BoundariesFor(snap.Facility, snap.Date, e.defaultGranularity)
	if err != nil {
		return 0, apperrors.InvalidInput(err.Error())
	}

	var exclusions []ExclusionWindow
	for i, v := range views {
		if i >= len(bounds) {
			break
		}
		if v.Status != model.StatusAvailable {
			exclusions = append(exclusions, ExclusionWindow{
				StartMin: bounds[i].StartMin,
				EndMin:   bounds[i].EndMin,
			})
		}
	}
	return OpenIncrementCount(bounds, exclusions), nil
}

// IsRangeAvailable checks an exact [startMin,endMin) range. Returns nil when
// the whole range is bookable; otherwise a typed error: INVALID_INPUT for
// malformed ranges (caller bug, fail fast), NOT_CONFIGURED when the date has
// no slot records, CONFLICT when any increment is blocked. A single failing
// increment rejects the whole range.
func (e *Engine) IsRangeAvailable(snap *Snapshot, startMin, endMin int, sessionID string) error {
	granularity := Granularity(snap.Facility, e.defaultGranularity)

	if endMin <= startMin {
		return apperrors.InvalidInput("end time must be after start time")
	}
	if !AlignedToGrid(startMin, granularity) || !AlignedToGrid(endMin, granularity) {
		return apperrors.InvalidInput(fmt.Sprintf("range endpoints must align to the %d-minute grid", granularity))
	}

	if len(snap.Slots) == 0 {
		return apperrors.NotConfigured("no slots exist for this date")
	}

	now := e.clock.Now()
	for cur := startMin; cur < endMin; cur += granularity {
		inc := Increment{StartMin: cur, EndMin: cur + granularity}
		status, reason := snap.resolveStatus(inc, now, sessionID)

		switch status {
		case model.StatusAvailable:
			continue
		case model.StatusNotConfigured:
			return apperrors.NotConfigured(
				fmt.Sprintf("slot %s is not configured", model.FormatMinuteOfDay(cur)))
		case model.StatusRecurringBlocked:
			return apperrors.Conflict(
				fmt.Sprintf("slot %s is blocked: %s", model.FormatMinuteOfDay(cur), reason))
		case model.StatusBooked, model.StatusHeld, model.StatusUnavailable:
			return apperrors.Conflict(
				fmt.Sprintf("slot %s is %s", model.FormatMinuteOfDay(cur), status))
		default:
			return apperrors.Internal(fmt.Sprintf("unknown slot status %q", status), nil)
		}
	}
	return nil
}

// ReachableEndTimes walks forward one increment at a time from startMin and
// collects every end boundary reachable without a gap: the walk stops at the
// first failing increment, never skipping over it. Empty when the start
// itself is blocked.
func (e *Engine) ReachableEndTimes(snap *Snapshot, startMin int, sessionID string) ([]string, error) {
	granularity := Granularity(snap.Facility, e.defaultGranularity)

	if !AlignedToGrid(startMin, granularity) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("start time must align to the %d-minute grid", granularity))
	}

	bounds, err := BoundariesFor(snap.Facility, snap.Date, e.defaultGranularity)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	// A start instant inside an active booking can reach nothing; skip the
	// walk entirely.
	if StartBlockedBy(startMin, snap.Bookings) {
		return []string{}, nil
	}

	now := e.clock.Now()
	ends := []string{}
	for _, inc := range bounds {
		if inc.StartMin < startMin {
			continue
		}
		if inc.StartMin > startMin+granularity*len(ends) {
			// Grid gap within opening hours; contiguity broken.
			break
		}
		status, _ := snap.resolveStatus(inc, now, sessionID)
		if status != model.StatusAvailable {
			break
		}
		ends = append(ends, model.FormatMinuteOfDay(inc.EndMin))
	}

	e.log.Debug("Walked reachable end times",
		"facility_id", snap.Facility.ID,
		"date", snap.Date.Format(model.DateLayout),
		"start", model.FormatMinuteOfDay(startMin),
		"reachable", len(ends),
	)
	return ends, nil
}
