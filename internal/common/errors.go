// Package common contains shared constants and sentinel errors used across
// the task list backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Authentication errors. Unknown email, wrong password and inactive
	// account all collapse into ErrInvalidCredentials so that the outcome
	// never reveals which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Token errors. Malformed, badly signed, expired, wrong kind and
	// revoked tokens are indistinguishable to the caller.
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Authorization errors.
	ErrForbidden = errors.New("forbidden")
)
