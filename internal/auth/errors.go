package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown account and for a wrong
	// secret alike, so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated indicates an anonymous session asked for scoped data
	ErrNotAuthenticated = errors.New("session is not authenticated")
)
