package validator

import (
	"errors"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyEmail indicates the email is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email is not a valid address
	ErrInvalidEmail = errors.New("email must be a valid address")
)

// EmailValidator handles email validation
type EmailValidator struct {
	validate *playground.Validate
}

// NewEmailValidator creates a new email validator instance
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{validate: playground.New()}
}

// Validate checks an email address and returns its normalised form.
// Addresses are compared case-insensitively across the system.
func (v *EmailValidator) Validate(email string) (string, error) {
	normalized := Normalize(email)
	if normalized == "" {
		return "", ErrEmptyEmail
	}
	if err := v.validate.Var(normalized, "email,max=255"); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// Normalize trims and lower-cases an email address
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
