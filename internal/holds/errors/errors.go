package errors

import "errors"

var (
	ErrHoldNotFound = errors.New("hold not found")
	ErrInvalidID    = errors.New("invalid hold ID format")
)
