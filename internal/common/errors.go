// Package common defines shared constants and sentinel errors used across
// client and server layers of Life Weeks. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")

	// Validation errors.
	ErrorValidation  = errors.New("validation error")
	ErrorInvalidDate = errors.New("invalid date")
	ErrorOutOfRange  = errors.New("value out of range")

	// Snapshot codec errors.
	ErrUnsupportedVersion = errors.New("unsupported snapshot format version")
	ErrMalformedSnapshot  = errors.New("malformed snapshot")

	// Sync errors.
	ErrNoRemote = errors.New("no remote document")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
