package http

import (
	"regexp"
	"strings"

	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/settings"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reHHMM  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// user ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// wall clock "HH:MM", 24h
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return reHHMM.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := settings.ParseWeekday(fl.Field().String())
		return ok
	})
	// conditions a fine type may be configured for
	_ = v.RegisterValidation("fine_condition", func(fl validator.FieldLevel) bool {
		return fine.Condition(strings.ToLower(fl.Field().String())).Valid()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "hhmm":
			out = append(out, FieldError{Field: field, Message: "must be a 24h time HH:MM"})
		case "weekday":
			out = append(out, FieldError{Field: field, Message: "must be a weekday name"})
		case "fine_condition":
			out = append(out, FieldError{Field: field, Message: "must be one of fair, poor, damaged, lost"})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must match " + e.Param()})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		case "unique":
			out = append(out, FieldError{Field: field, Message: "must not contain duplicates"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must have at least " + e.Param() + " item(s)"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param()})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
