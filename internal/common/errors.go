// Package common defines shared constants and sentinel errors used across
// the client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrCacheUnavailable means local persistence itself failed (storage
	// full, permission denied). This is the only error class that surfaces
	// to the UI as a user-visible failure.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// Session / flow-control errors.
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrMissingUserID     = errors.New("missing user id")
	ErrInvalidAuthResult = errors.New("invalid auth result")

	// Remote backend errors.
	ErrServerUnavailable = errors.New("server unavailable")
)
