package api

import "errors"

var (
	// ErrUnauthorized indicates invalid or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the server cannot be reached or is failing.
	ErrUnavailable = errors.New("server unavailable")
)
