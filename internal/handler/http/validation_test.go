package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictEmailValidation(t *testing.T) {
	v := newValidator()

	type payload struct {
		Email string `validate:"required,strict_email"`
	}

	valid := []string{
		"marko@example.com",
		"jelena.petrovic@firma.rs",
		"x@y.co",
	}
	for _, email := range valid {
		assert.NoError(t, v.Struct(payload{Email: email}), "email %q must be accepted", email)
	}

	invalid := []string{
		"marko@example", // no TLD
		"marko example@firma.rs",
		"@firma.rs",
		"marko@",
		"",
	}
	for _, email := range invalid {
		assert.Error(t, v.Struct(payload{Email: email}), "email %q must be rejected", email)
	}
}

func TestSerbianPhoneValidation(t *testing.T) {
	v := newValidator()

	type payload struct {
		Phone string `validate:"required,rs_phone"`
	}

	valid := []string{
		"+381641234567",
		"+38164123456",
		"0641234567",
		"064123456",
	}
	for _, phone := range valid {
		assert.NoError(t, v.Struct(payload{Phone: phone}), "phone %q must be accepted", phone)
	}

	invalid := []string{
		"+38164123",      // too few digits
		"+3816412345678", // too many digits
		"641234567",      // missing prefix
		"+49641234567",   // wrong country code
		"064-123-4567",   // separators not allowed
		"",
	}
	for _, phone := range invalid {
		assert.Error(t, v.Struct(payload{Phone: phone}), "phone %q must be rejected", phone)
	}
}

func TestFirstValidationErrorIsFailFast(t *testing.T) {
	v := newValidator()

	// Both fields are invalid; only the first is reported.
	type payload struct {
		FirstName string `validate:"required"`
		Email     string `validate:"required,strict_email"`
	}

	err := v.Struct(payload{})
	require.Error(t, err)
	assert.Equal(t, "field 'FirstName' is required", firstValidationError(err))

	err = v.Struct(payload{FirstName: "Marko", Email: "marko@example"})
	require.Error(t, err)
	assert.Equal(t, "field 'Email' must be a valid email address", firstValidationError(err))
}

func TestFirstValidationErrorUnknownShape(t *testing.T) {
	assert.Equal(t, "invalid request payload", firstValidationError(assert.AnError))
}
