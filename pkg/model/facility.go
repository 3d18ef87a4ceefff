package model

import (
	"time"
)

// DayHours is a facility's opening window for one weekday.
// Close "00:00" means the facility stays open until end of day.
type DayHours struct {
	Open   string `json:"open,omitempty" bson:"open,omitempty" validate:"omitempty,hhmm"`
	Close  string `json:"close,omitempty" bson:"close,omitempty" validate:"omitempty,hhmm"`
	Closed bool   `json:"closed" bson:"closed"`
}

// WeekHours holds the default opening window per weekday.
type WeekHours struct {
	Monday    DayHours `json:"monday" bson:"monday"`
	Tuesday   DayHours `json:"tuesday" bson:"tuesday"`
	Wednesday DayHours `json:"wednesday" bson:"wednesday"`
	Thursday  DayHours `json:"thursday" bson:"thursday"`
	Friday    DayHours `json:"friday" bson:"friday"`
	Saturday  DayHours `json:"saturday" bson:"saturday"`
	Sunday    DayHours `json:"sunday" bson:"sunday"`
}

// For returns the opening window for a weekday.
func (w WeekHours) For(day time.Weekday) DayHours {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// DayOverride replaces the default opening window on one calendar date.
type DayOverride struct {
	Date   string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Open   string `json:"open,omitempty" bson:"open,omitempty" validate:"omitempty,hhmm"`
	Close  string `json:"close,omitempty" bson:"close,omitempty" validate:"omitempty,hhmm"`
	Closed bool   `json:"closed" bson:"closed"`
}

// GuaranteeConfig enables the deposit payment mode: only DepositPercent of the
// net price is collected online, the balance is settled in person.
type GuaranteeConfig struct {
	Enabled        bool    `json:"enabled" bson:"enabled"`
	DepositPercent float64 `json:"deposit_percent" bson:"deposit_percent" validate:"omitempty,gt=0,lte=100"`
}

type Facility struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID string `json:"owner_id" bson:"owner_id" validate:"required"`
	Name    string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City    string `json:"city" bson:"city" validate:"required,min=2,max=50"`

	Hours     WeekHours     `json:"hours" bson:"hours"`
	Overrides []DayOverride `json:"overrides,omitempty" bson:"overrides,omitempty" validate:"omitempty,dive"`

	// SlotGranularityMin is the canonical slot length. Every range endpoint
	// must align to it.
	SlotGranularityMin int `json:"slot_granularity_min" bson:"slot_granularity_min" validate:"required,min=5,max=240"`

	// Anchor net prices. 1h is mandatory, 1h30 and 2h are optional and
	// interpolated/extrapolated around when absent.
	PriceNet1h   int64  `json:"price_net_1h" bson:"price_net_1h" validate:"required,gt=0"`
	PriceNet1h30 *int64 `json:"price_net_1h30,omitempty" bson:"price_net_1h30,omitempty" validate:"omitempty,gt=0"`
	PriceNet2h   *int64 `json:"price_net_2h,omitempty" bson:"price_net_2h,omitempty" validate:"omitempty,gt=0"`

	// CommissionRate converts net price to public price (e.g. 0.03).
	CommissionRate float64 `json:"commission_rate" bson:"commission_rate" validate:"gte=0,lt=1"`

	// RoundingIncrement aligns displayed deposit prices (e.g. 500 currency
	// units). Zero falls back to the service-wide default.
	RoundingIncrement int64 `json:"rounding_increment,omitempty" bson:"rounding_increment,omitempty" validate:"omitempty,gt=0"`

	FullPaymentEnabled bool            `json:"full_payment_enabled" bson:"full_payment_enabled"`
	Guarantee          GuaranteeConfig `json:"guarantee" bson:"guarantee"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HoursOn resolves the opening window for a calendar date, preferring a
// date-specific override over the weekday default.
func (f *Facility) HoursOn(date time.Time) DayHours {
	key := date.Format(DateLayout)
	for _, o := range f.Overrides {
		if o.Date == key {
			return DayHours{Open: o.Open, Close: o.Close, Closed: o.Closed}
		}
	}
	return f.Hours.For(date.Weekday())
}

// HasPaymentMode reports whether at least one payment mode is enabled.
// A facility with neither full payment nor guarantee is unbookable.
func (f *Facility) HasPaymentMode() bool {
	return f.FullPaymentEnabled || f.Guarantee.Enabled
}

// SupportsPaymentMode reports whether the facility offers the given mode.
func (f *Facility) SupportsPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeFull:
		return f.FullPaymentEnabled
	case PaymentModeGuarantee:
		return f.Guarantee.Enabled
	}
	return false
}

type FacilityUpdate struct {
	Name      string         `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	City      string         `json:"city,omitempty" validate:"omitempty,min=2,max=50"`
	Hours     *WeekHours     `json:"hours,omitempty" validate:"omitempty"`
	Overrides *[]DayOverride `json:"overrides,omitempty" validate:"omitempty,dive"`

	PriceNet1h   *int64 `json:"price_net_1h,omitempty" validate:"omitempty,gt=0"`
	PriceNet1h30 *int64 `json:"price_net_1h30,omitempty" validate:"omitempty,gt=0"`
	PriceNet2h   *int64 `json:"price_net_2h,omitempty" validate:"omitempty,gt=0"`

	CommissionRate    *float64 `json:"commission_rate,omitempty" validate:"omitempty,gte=0,lt=1"`
	RoundingIncrement *int64   `json:"rounding_increment,omitempty" validate:"omitempty,gt=0"`

	FullPaymentEnabled *bool            `json:"full_payment_enabled,omitempty"`
	Guarantee          *GuaranteeConfig `json:"guarantee,omitempty"`
}
