package http

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// Stricter than validator's built-in email rule: a TLD is mandatory, so
	// "marko@example" is rejected.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Serbian phone numbers: +381 or 0 prefix followed by 8-9 digits.
	phonePattern = regexp.MustCompile(`^(\+381|0)[0-9]{8,9}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Registration errors only happen for non-function validators; panicking
	// at startup is fine here.
	if err := v.RegisterValidation("strict_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("rs_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// firstValidationError reports the first failing field only: checkout
// validation is fail-fast, one field-specific error at a time.
func firstValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "invalid request payload"
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", fe.Field())
	case "strict_email":
		return fmt.Sprintf("field '%s' must be a valid email address", fe.Field())
	case "rs_phone":
		return fmt.Sprintf("field '%s' must be a valid Serbian phone number", fe.Field())
	case "min":
		return fmt.Sprintf("field '%s' is too short", fe.Field())
	case "oneof":
		return fmt.Sprintf("field '%s' has an unsupported value", fe.Field())
	case "gte":
		return fmt.Sprintf("field '%s' is below the allowed minimum", fe.Field())
	default:
		return fmt.Sprintf("field '%s' is invalid", fe.Field())
	}
}
