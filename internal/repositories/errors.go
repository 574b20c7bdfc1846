package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a unique column (email, api key) is already taken.
	ErrDuplicateKey = errors.New("duplicate key")
)
