package model

import "time"

// Hold is a time-bound exclusive lease over a range, placed while a group
// payment is being collected. It is a weak lease, not ownership: expiry needs
// no release call, every reader compares HoldUntil against the clock.
type Hold struct {
	ID         string `json:"id" bson:"_id" validate:"required"`
	FacilityID string `json:"facility_id" bson:"facility_id" validate:"required,mongodb"`
	Date       string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" bson:"start" validate:"required,hhmm"`
	End        string `json:"end" bson:"end" validate:"required,hhmm"`

	// SessionID identifies the funding session the lease belongs to. The same
	// session may re-place its hold to extend it; any other session conflicts.
	SessionID string `json:"session_id" bson:"session_id" validate:"required"`

	HoldUntil time.Time `json:"hold_until" bson:"hold_until" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsActive reports whether the lease still blocks its range at the given
// instant.
func (h *Hold) IsActive(now time.Time) bool {
	return now.Before(h.HoldUntil)
}

// BlocksSession reports whether the hold excludes the given session: live and
// owned by someone else.
func (h *Hold) BlocksSession(now time.Time, sessionID string) bool {
	return h.IsActive(now) && h.SessionID != sessionID
}
