// Package validation checks the shape of user supplied fields before they
// reach the domain model.
package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrFieldMissing indicates an empty field.
	ErrFieldMissing = errors.New("field is missing")
	// ErrFieldInvalid indicates a field that is present but malformed.
	ErrFieldInvalid = errors.New("field is invalid")
)

const (
	nameRules  = "required,alpha,min=2"
	emailRules = "required,email"
)

// UserValidator validates user names and e-mail addresses.
type UserValidator struct {
	validate *validator.Validate
}

// NewUserValidator creates a new UserValidator.
func NewUserValidator() *UserValidator {
	return &UserValidator{
		validate: validator.New(),
	}
}

// ValidateFirstName accepts ASCII letters only, at least two of them.
func (v *UserValidator) ValidateFirstName(firstName string) error {
	return v.check(firstName, nameRules)
}

// ValidateLastName accepts ASCII letters only, at least two of them.
func (v *UserValidator) ValidateLastName(lastName string) error {
	return v.check(lastName, nameRules)
}

// ValidateEmail accepts a syntactically well-formed e-mail address.
func (v *UserValidator) ValidateEmail(email string) error {
	return v.check(email, emailRules)
}

func (v *UserValidator) check(value, rules string) error {
	err := v.validate.Var(value, rules)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 && validationErrors[0].Tag() == "required" {
		return ErrFieldMissing
	}
	return ErrFieldInvalid
}
