package errors

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidID       = errors.New("invalid booking ID format")
)
