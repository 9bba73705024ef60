// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential indicates a failed password check.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrTokenMalformed indicates a token whose structure or signature does not check out.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionRevoked indicates a refresh token that no longer matches the
	// stored fingerprint (logout, password change, or a concurrent refresh won).
	ErrSessionRevoked = errors.New("session revoked")

	// ErrStoreUnavailable indicates a storage failure; the caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
