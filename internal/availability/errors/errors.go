package errors

import "errors"

var (
	ErrFacilityNotFound = errors.New("facility not found")

	ErrInvalidID = errors.New("invalid facility ID format")
)
