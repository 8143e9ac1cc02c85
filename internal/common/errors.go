// Package common contains shared sentinel errors and small helpers used
// across client and server layers of the chat service. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration errors.
	ErrUsernameTaken = errors.New("username already taken")

	// Session-registry errors.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrSessionClosed   = errors.New("session closed")
	ErrQueueFull       = errors.New("queue full")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
