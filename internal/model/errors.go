package model

import "errors"

var (
	// Auth related errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnauthorized       = errors.New("unauthorized")

	// Entry related errors
	ErrEntryNotFound = errors.New("entry not found")
	ErrNotAFolder    = errors.New("entry is not a folder")
	ErrNameConflict  = errors.New("name already exists in folder")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
	ErrMoveCycle     = errors.New("cannot move a folder into itself or its descendants")

	// ErrStaleResponse marks a fetch whose result was superseded by a newer
	// request before it resolved. Callers discard it silently; it is never
	// surfaced to the user.
	ErrStaleResponse = errors.New("stale response discarded")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
