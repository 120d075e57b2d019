// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinels across repo/service/transport layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials or missing identity).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates malformed or missing input fields.
	ErrValidation = errors.New("validation")

	// ErrInvalidToken indicates a bearer token that is malformed or fails signature checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates a well-formed bearer token whose expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")

	// ErrRateLimited indicates temporary login lock due to repeated failures.
	ErrRateLimited = errors.New("rate limited")
)

// RetryAfterError is a rate-limit rejection that knows when the caller may try again.
// errors.Is(err, ErrRateLimited) holds for it.
type RetryAfterError struct {
	After time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.After.Round(time.Second))
}

// Unwrap returns ErrRateLimited.
func (e *RetryAfterError) Unwrap() error { return ErrRateLimited }
