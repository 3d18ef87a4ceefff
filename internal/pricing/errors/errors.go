package errors

import "errors"

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrPromoNotFound    = errors.New("promo rule not found")
	ErrInvalidID        = errors.New("invalid ID format")
)
