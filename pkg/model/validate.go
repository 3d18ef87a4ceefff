package model

import (
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations installs the tags shared by every model:
// "hhmm" for 24-hour wall-clock strings. Feature validators call this once
// at construction.
func RegisterCustomValidations(v *validator.Validate) error {
	return v.RegisterValidation("hhmm", validateHHMM)
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := ParseMinuteOfDay(fl.Field().String())
	return err == nil
}
