package shared

import "errors"

var (
	// ErrMissingToken occurs when no bearer token is supplied.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken occurs when a bearer token fails verification.
	ErrInvalidToken = errors.New("invalid bearer token")
)
