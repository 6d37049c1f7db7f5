package domain

import "errors"

// Validation.
var ErrValidation = errors.New("validation failed")

// Authentication. Each rejection reason is distinct so callers can tell an
// expired session from a forged one.
var (
	ErrMissingToken       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrUnknownSubject     = errors.New("token subject no longer exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Authorization.
var ErrForbidden = errors.New("access denied: insufficient permissions")

// Lookup.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrClientNotFound = errors.New("client not found")
)

// Uniqueness, raised by the store and remapped by the repositories.
var (
	ErrUserExists     = errors.New("email already registered")
	ErrDuplicateEmail = errors.New("client with this email already exists")
)
