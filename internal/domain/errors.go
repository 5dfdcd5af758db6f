package domain

import "errors"

var (
	// ErrInvalidInput is returned when caller-supplied fields are missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a token cannot be resolved to a user.
	ErrUnauthorized = errors.New("unauthorized")
)
