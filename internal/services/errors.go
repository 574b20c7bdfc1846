package services

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("e-mail is already registered")
	ErrValidation   = errors.New("validation failed")

	// Credential errors
	ErrMissingCredentials = errors.New("credentials have not been provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is blocked")
	ErrForbidden          = errors.New("access denied")
	ErrAPIKeyExhausted    = errors.New("could not generate a unique API key")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match both ErrValidation and the field reason.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}
