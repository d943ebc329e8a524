// Package common defines shared constants and sentinel errors used across
// client and server layers of Rose Bud Thorn. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors (missing or malformed input; never sent over the network).
	ErrValidation = errors.New("validation error")

	// Conflicts.
	ErrEditWindowClosed = errors.New("too late to edit: entries can only be changed on the day they were written")
	ErrEntryExists      = errors.New("an entry for this day already exists")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrGroupCodeTaken   = errors.New("group code is already taken")
	ErrUsernameTaken    = errors.New("username is already taken")

	// Transport errors.
	ErrUnavailable   = errors.New("server unavailable")
	ErrStaleResponse = errors.New("stale response discarded")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
