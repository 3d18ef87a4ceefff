package errors

import "errors"

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrRuleNotFound     = errors.New("recurring rule not found")
	ErrInvalidID        = errors.New("invalid ID format")
)
