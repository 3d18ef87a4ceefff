package validator

import (
	"errors"
	"fmt"
	"strings"

	"pitchside/internal/pricing/service"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type PricingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPricingValidator(log *logger.Logger) *PricingValidator {
	v := validator.New()

	if err := model.RegisterCustomValidations(v); err != nil {
		log.Fatal("Failed to register custom validations", "error", err)
	}

	return &PricingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *PricingValidator) ValidateQuote(req *service.QuoteRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return v.translate(fieldErrs)
		}
		return err
	}
	return nil
}

func (v *PricingValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "hhmm":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be formatted as YYYY-MM-DD", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object id", err.Field())
		case "min", "max":
			message = fmt.Sprintf("%s length is out of bounds", err.Field())
		}

		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
