package model

import "time"

type BookingStatus string

const (
	BookingPending        BookingStatus = "pending"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingOwnerConfirmed BookingStatus = "owner_confirmed"
	BookingCompleted      BookingStatus = "completed"
	BookingCancelled      BookingStatus = "cancelled"
	BookingRefunded       BookingStatus = "refunded"
)

// ActiveBookingStatuses are the statuses that block a time range. Terminal
// statuses free the range the moment they are written.
var ActiveBookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingOwnerConfirmed,
}

// bookingTransitions encodes the one-directional status graph. Every path
// ends in completed, cancelled or refunded; nothing leaves a terminal status.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:        {BookingConfirmed, BookingCancelled},
	BookingConfirmed:      {BookingOwnerConfirmed, BookingCancelled, BookingRefunded},
	BookingOwnerConfirmed: {BookingCompleted, BookingCancelled, BookingRefunded},
	BookingCompleted:      {},
	BookingCancelled:      {},
	BookingRefunded:       {},
}

const (
	PaymentModeFull      = "full"
	PaymentModeGuarantee = "guarantee"
)

type Booking struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID string `json:"facility_id" bson:"facility_id" validate:"required,mongodb"`
	UserID     string `json:"user_id" bson:"user_id" validate:"required"`
	Date       string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" bson:"start" validate:"required,hhmm"`
	End        string `json:"end" bson:"end" validate:"required,hhmm"`

	Status BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed owner_confirmed completed cancelled refunded"`

	// Price snapshot at reservation time, so later facility price edits never
	// change what was agreed.
	PriceNet    int64  `json:"price_net" bson:"price_net" validate:"gte=0"`
	PricePublic int64  `json:"price_public" bson:"price_public" validate:"gte=0"`
	PromoCode   string `json:"promo_code,omitempty" bson:"promo_code,omitempty" validate:"omitempty,max=40"`
	PaymentMode string `json:"payment_mode" bson:"payment_mode" validate:"required,oneof=full guarantee"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// IsActive reports whether the booking blocks its range for conflict purposes.
func (b *Booking) IsActive() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status change follows the
// one-directional graph toward a terminal status.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	for _, s := range bookingTransitions[b.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the booking reached a final status.
func (b *Booking) IsTerminal() bool {
	return len(bookingTransitions[b.Status]) == 0
}
