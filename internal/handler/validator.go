package handler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

var (
	// Discord snowflakes are unsigned 64-bit integers rendered in decimal
	snowflakePattern = regexp.MustCompile(`^[0-9]{15,20}$`)
	// Codeforces handles: 3-24 characters of letters, digits, '_', '-' and '.'
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,24}$`)
)

// InitValidator initializes the global validator
func InitValidator() {
	v := validator.New()

	_ = v.RegisterValidation("snowflake", validateSnowflake)
	_ = v.RegisterValidation("handle", validateHandle)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map
// keyed by lower-cased field name
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "snowflake":
			errs[field] = "Must be a Discord ID"
		case "handle":
			errs[field] = "Invalid Codeforces handle"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "nefield":
			errs[field] = fmt.Sprintf("Must differ from %s", strings.ToLower(e.Param()))
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// Empty values pass; pair with 'required' where the field is mandatory.
func validateSnowflake(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return true
	}
	return snowflakePattern.MatchString(id)
}

func validateHandle(fl validator.FieldLevel) bool {
	h := strings.TrimSpace(fl.Field().String())
	if h == "" {
		return true
	}
	return handlePattern.MatchString(h)
}
