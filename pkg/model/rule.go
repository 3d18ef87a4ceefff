package model

import "time"

// RecurringBlockRule is a weekly exclusion window, e.g. "every monday
// 18:00-20:00, school lease". One rule carries a set of weekdays; fanning out
// to per-day rows is the storage layer's business, not the engine's.
//
// A matching rule blocks its window regardless of the underlying slot's
// availability flag and cannot be toggled per-instance.
type RecurringBlockRule struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID string `json:"facility_id" bson:"facility_id" validate:"required,mongodb"`

	Weekdays []string `json:"weekdays" bson:"weekdays" validate:"required,min=1,max=7,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Start    string   `json:"start" bson:"start" validate:"required,hhmm"`
	End      string   `json:"end" bson:"end" validate:"required,hhmm"`

	ValidFrom string  `json:"valid_from" bson:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidTo   *string `json:"valid_to,omitempty" bson:"valid_to,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Active bool   `json:"active" bson:"active"`
	Label  string `json:"label" bson:"label" validate:"required,min=2,max=100"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AppliesOn reports whether the rule covers the given weekday.
func (r *RecurringBlockRule) AppliesOn(day time.Weekday) bool {
	name := WeekdayName(day)
	for _, d := range r.Weekdays {
		if d == name {
			return true
		}
	}
	return false
}

// InValidityWindow reports whether the date falls inside [ValidFrom, ValidTo].
// A nil ValidTo means the rule never expires.
func (r *RecurringBlockRule) InValidityWindow(date time.Time) bool {
	from, err := ParseDate(r.ValidFrom)
	if err != nil || date.Before(from) {
		return false
	}
	if r.ValidTo == nil {
		return true
	}
	to, err := ParseDate(*r.ValidTo)
	if err != nil {
		return false
	}
	return !date.After(to)
}

type RecurringBlockRuleUpdate struct {
	Weekdays []string `json:"weekdays,omitempty" validate:"omitempty,min=1,max=7,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Start    string   `json:"start,omitempty" validate:"omitempty,hhmm"`
	End      string   `json:"end,omitempty" validate:"omitempty,hhmm"`

	ValidFrom string  `json:"valid_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidTo   *string `json:"valid_to,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Active *bool  `json:"active,omitempty"`
	Label  string `json:"label,omitempty" validate:"omitempty,min=2,max=100"`
}
