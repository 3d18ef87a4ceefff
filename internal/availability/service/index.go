package service

import (
	"time"

	"pitchside/pkg/model"
)

// Snapshot is the data the engine decides over: facility config plus the
// slot, booking, rule and hold records the caller fetched for one date. The
// engine never reads storage itself, so every decision is advisory until the
// storage layer re-checks at commit time.
type Snapshot struct {
	Facility *model.Facility
	Date     time.Time
	Slots    []*model.Slot
	Bookings []*model.Booking
	Rules    []*model.RecurringBlockRule
	Holds    []*model.Hold
}

// SlotView is one resolved grid cell for calendar rendering.
type SlotView struct {
	Start  string           `json:"start"`
	End    string           `json:"end"`
	Status model.SlotStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}

// slotRecord finds the persisted slot covering an increment, matched on the
// exact canonical start.
func (s *Snapshot) slotRecord(inc Increment) *model.Slot {
	startStr := model.FormatMinuteOfDay(inc.StartMin)
	for _, rec := range s.Slots {
		if rec.Start == startStr {
			return rec
		}
	}
	return nil
}

// heldByOther reports whether any live lease owned by a different session
// covers the increment, counting both hold documents and the lease fields
// denormalized onto the slot record.
func (s *Snapshot) heldByOther(inc Increment, now time.Time, sessionID string) bool {
	for _, h := range s.Holds {
		hs, err := model.ParseMinuteOfDay(h.Start)
		if err != nil {
			continue
		}
		he, err := model.ParseEndMinute(h.End)
		if err != nil {
			continue
		}
		if Overlaps(inc.StartMin, inc.EndMin, hs, he) && h.BlocksSession(now, sessionID) {
			return true
		}
	}

	if rec := s.slotRecord(inc); rec != nil && rec.HeldBy(now, sessionID) {
		return true
	}
	return false
}

// resolveStatus merges every record kind into one status for an increment.
// Precedence, highest first: recurring-blocked, booked, held, unavailable,
// available; an increment with no persisted slot is not-configured. This is
// the single source of truth for both calendar rendering and range checks.
func (s *Snapshot) resolveStatus(inc Increment, now time.Time, sessionID string) (model.SlotStatus, string) {
	if res := RecurringBlocks(s.Rules, s.Date, inc.StartMin, inc.EndMin); res.Blocked {
		return model.StatusRecurringBlocked, res.Label
	}

	if OverlapsActiveBooking(inc.StartMin, inc.EndMin, s.Bookings) {
		return model.StatusBooked, ""
	}

	if s.heldByOther(inc, now, sessionID) {
		return model.StatusHeld, ""
	}

	rec := s.slotRecord(inc)
	if rec == nil {
		return model.StatusNotConfigured, ""
	}
	if !rec.IsAvailable {
		return model.StatusUnavailable, rec.UnavailabilityReason
	}

	return model.StatusAvailable, ""
}
