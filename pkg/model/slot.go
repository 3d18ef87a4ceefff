package model

import "time"

// SlotStatus is the resolved state of one canonical increment, after merging
// slot records, bookings, recurring rules and holds. The zero value is
// deliberately invalid so an unresolved status cannot pass for a real one.
type SlotStatus string

const (
	StatusAvailable        SlotStatus = "available"
	StatusBooked           SlotStatus = "booked"
	StatusHeld             SlotStatus = "held"
	StatusUnavailable      SlotStatus = "unavailable"
	StatusRecurringBlocked SlotStatus = "recurring_blocked"
	StatusNotConfigured    SlotStatus = "not_configured"
)

// Slot is the persisted record for one canonical increment of a facility day.
// Created in batches when an owner opens a period; toggled manually or by
// hold placement; only explicit reconfiguration deletes it.
type Slot struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID string `json:"facility_id" bson:"facility_id" validate:"required,mongodb"`
	Date       string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" bson:"start" validate:"required,hhmm"`
	End        string `json:"end" bson:"end" validate:"required,hhmm"`

	IsAvailable          bool   `json:"is_available" bson:"is_available"`
	UnavailabilityReason string `json:"unavailability_reason,omitempty" bson:"unavailability_reason,omitempty" validate:"omitempty,max=200"`

	// Hold lease fields. A slot with HoldUntil in the past behaves exactly
	// like a slot with no hold; readers compare against the clock, nothing
	// sweeps these eagerly.
	HoldUntil     *time.Time `json:"hold_until,omitempty" bson:"hold_until,omitempty"`
	HoldSessionID string     `json:"hold_session_id,omitempty" bson:"hold_session_id,omitempty"`

	PriceOverride *int64 `json:"price_override,omitempty" bson:"price_override,omitempty" validate:"omitempty,gt=0"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HeldBy reports whether the slot carries a live lease owned by another
// session at the given instant.
func (s *Slot) HeldBy(now time.Time, sessionID string) bool {
	if s.HoldUntil == nil || s.HoldSessionID == "" {
		return false
	}
	if !now.Before(*s.HoldUntil) {
		return false
	}
	return s.HoldSessionID != sessionID
}
