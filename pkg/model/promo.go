package model

import "time"

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// PromoRule discounts the public price. A rule with an empty Code applies
// automatically when its constraints match; otherwise the payer redeems it by
// code.
type PromoRule struct {
	ID   string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Code string `json:"code,omitempty" bson:"code,omitempty" validate:"omitempty,min=3,max=40"`

	Type  DiscountType `json:"type" bson:"type" validate:"required,oneof=percent fixed"`
	Value int64        `json:"value" bson:"value" validate:"required,gt=0"`

	// Empty FacilityIDs means the rule applies everywhere.
	FacilityIDs []string `json:"facility_ids,omitempty" bson:"facility_ids,omitempty" validate:"omitempty,dive,mongodb"`

	// Optional weekday and time-window constraints on the booked range.
	Weekdays    []string `json:"weekdays,omitempty" bson:"weekdays,omitempty" validate:"omitempty,min=1,max=7,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	WindowStart string   `json:"window_start,omitempty" bson:"window_start,omitempty" validate:"omitempty,hhmm"`
	WindowEnd   string   `json:"window_end,omitempty" bson:"window_end,omitempty" validate:"omitempty,hhmm"`

	ValidFrom string  `json:"valid_from" bson:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidTo   *string `json:"valid_to,omitempty" bson:"valid_to,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// MaxUses zero means unlimited.
	MaxUses int `json:"max_uses,omitempty" bson:"max_uses,omitempty" validate:"omitempty,gt=0"`
	Uses    int `json:"uses" bson:"uses" validate:"gte=0"`

	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsAutomatic reports whether the rule applies without a redemption code.
func (p *PromoRule) IsAutomatic() bool {
	return p.Code == ""
}

// Exhausted reports whether the usage limit is spent.
func (p *PromoRule) Exhausted() bool {
	return p.MaxUses > 0 && p.Uses >= p.MaxUses
}

// AppliesTo reports whether the rule covers the facility on the given date
// and booked start time.
func (p *PromoRule) AppliesTo(facilityID string, date time.Time, startMin int) bool {
	if !p.Active || p.Exhausted() {
		return false
	}
	if !p.inValidityWindow(date) {
		return false
	}
	if len(p.FacilityIDs) > 0 && !contains(p.FacilityIDs, facilityID) {
		return false
	}
	if len(p.Weekdays) > 0 && !contains(p.Weekdays, WeekdayName(date.Weekday())) {
		return false
	}
	if p.WindowStart != "" && p.WindowEnd != "" {
		ws, err1 := ParseMinuteOfDay(p.WindowStart)
		we, err2 := ParseEndMinute(p.WindowEnd)
		if err1 != nil || err2 != nil {
			return false
		}
		if startMin < ws || startMin >= we {
			return false
		}
	}
	return true
}

func (p *PromoRule) inValidityWindow(date time.Time) bool {
	from, err := ParseDate(p.ValidFrom)
	if err != nil || date.Before(from) {
		return false
	}
	if p.ValidTo == nil {
		return true
	}
	to, err := ParseDate(*p.ValidTo)
	if err != nil {
		return false
	}
	return !date.After(to)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
