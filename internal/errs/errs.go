// Package errs contains sentinel errors shared across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrInvalidInput indicates malformed caller input; details are safe to surface.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation the caller could not resolve.
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized indicates failed authentication. Deliberately opaque:
	// callers never learn which credential check failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAccessDenied indicates a role check failed for an authenticated identity.
	ErrAccessDenied = errors.New("access denied")

	// ErrRateLimited indicates a temporary login lock due to repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates a store-level transient failure. The core does
	// not retry; retry policy belongs to the boundary layer.
	ErrUnavailable = errors.New("storage unavailable")
)
