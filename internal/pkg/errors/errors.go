package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing or not-owned resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is a sentinel for unique-constraint style conflicts.
	ErrConflict = errors.New("conflict")
	// ErrInsufficientData marks designed "nothing to show" outcomes:
	// fewer than 3 events, fewer than 3 sessions, no stored patterns.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrRateLimited marks requests rejected by the rolling-window limiter.
	ErrRateLimited = errors.New("rate limited")
	// ErrConfigMissing marks operations that require configuration that
	// was never provided (e.g. no model credential).
	ErrConfigMissing = errors.New("configuration missing")
)
