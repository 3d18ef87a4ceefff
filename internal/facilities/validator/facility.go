package validator

import (
	"errors"
	"fmt"
	"strings"

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

type FacilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewFacilityValidator(log *logger.Logger) *FacilityValidator {
	v := validator.New()

	if err := model.RegisterCustomValidations(v); err != nil {
		log.Fatal("Failed to register custom validations", "error", err)
	}

	return &FacilityValidator{
		validate: v,
		logger:   log,
	}
}

func (v *FacilityValidator) ValidateFacility(f *model.Facility) error {
	if err := v.validate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return v.translate(fieldErrs)
		}
		return err
	}
	return v.crossField(f)
}

// crossField covers the rules struct tags cannot express.
func (v *FacilityValidator) crossField(f *model.Facility) error {
	var out ValidationErrors

	if !f.HasPaymentMode() {
		out = append(out, ValidationError{
			Field:   "FullPaymentEnabled",
			Message: "at least one payment mode (full or guarantee) must be enabled",
		})
	}
	if f.Guarantee.Enabled && f.Guarantee.DepositPercent <= 0 {
		out = append(out, ValidationError{
			Field:   "Guarantee.DepositPercent",
			Message: "deposit percent is required when guarantee mode is enabled",
		})
	}
	if f.SlotGranularityMin > 0 && model.MinutesPerDay%f.SlotGranularityMin != 0 {
		out = append(out, ValidationError{
			Field:   "SlotGranularityMin",
			Message: "granularity must divide the day evenly",
		})
	}

	weekdays := []struct {
		name  string
		hours model.DayHours
	}{
		{"monday", f.Hours.Monday},
		{"tuesday", f.Hours.Tuesday},
		{"wednesday", f.Hours.Wednesday},
		{"thursday", f.Hours.Thursday},
		{"friday", f.Hours.Friday},
		{"saturday", f.Hours.Saturday},
		{"sunday", f.Hours.Sunday},
	}
	for _, day := range weekdays {
		if msg := checkHours(day.hours); msg != "" {
			out = append(out, ValidationError{Field: "Hours." + day.name, Message: msg})
		}
	}
	for _, o := range f.Overrides {
		if msg := checkHours(model.DayHours{Open: o.Open, Close: o.Close, Closed: o.Closed}); msg != "" {
			out = append(out, ValidationError{Field: "Overrides." + o.Date, Message: msg})
		}
	}

	if len(out) > 0 {
		return out
	}
	return nil
}

// checkHours accepts a closed day, an unset day, or an ordered open window.
// Close "00:00" counts as end of day.
func checkHours(h model.DayHours) string {
	if h.Closed {
		return ""
	}
	if h.Open == "" && h.Close == "" {
		return ""
	}
	if h.Open == "" || h.Close == "" {
		return "open and close must both be set"
	}
	open, err := model.ParseMinuteOfDay(h.Open)
	if err != nil {
		return err.Error()
	}
	closeMin, err := model.ParseEndMinute(h.Close)
	if err != nil {
		return err.Error()
	}
	if closeMin <= open {
		return "close must be after open"
	}
	return ""
}

func (v *FacilityValidator) ValidateRule(rule *model.RecurringBlockRule) error {
	if err := v.validate.Struct(rule); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return v.translate(fieldErrs)
		}
		return err
	}

	start, err := model.ParseMinuteOfDay(rule.Start)
	if err != nil {
		return ValidationErrors{{Field: "Start", Message: err.Error()}}
	}
	end, err := model.ParseEndMinute(rule.End)
	if err != nil {
		return ValidationErrors{{Field: "End", Message: err.Error()}}
	}
	if end <= start {
		return ValidationErrors{{Field: "End", Message: "end must be after start"}}
	}

	if rule.ValidTo != nil {
		from, err1 := model.ParseDate(rule.ValidFrom)
		to, err2 := model.ParseDate(*rule.ValidTo)
		if err1 == nil && err2 == nil && to.Before(from) {
			return ValidationErrors{{Field: "ValidTo", Message: "valid_to must not precede valid_from"}}
		}
	}
	return nil
}

func (v *FacilityValidator) translate(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "min", "max":
			message = fmt.Sprintf("%s is out of bounds", err.Field())
		case "gt", "gte", "lt", "lte":
			message = fmt.Sprintf("%s is out of range", err.Field())
		}

		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
