package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrProviderNotFound indicates the requested provider id is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAlreadyRegistered indicates a provider with the same id is already registered.
	ErrAlreadyRegistered = errors.New("provider already registered")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSortPolicy indicates a sort key outside the supported set.
	ErrUnknownSortPolicy = errors.New("unknown sort policy")

	// ErrRateLimited indicates a provider API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnavailable indicates a provider is registered but cannot
	// currently serve searches (missing token, unreachable endpoint).
	ErrProviderUnavailable = errors.New("provider unavailable")
)
