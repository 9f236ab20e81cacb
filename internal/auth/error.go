// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
)

// ErrRemoteLogout is the root cause recorded when the backend rejects a
// logout request with an unexpected status.
var ErrRemoteLogout = errors.New("remote logout failed")

// ErrNotConfigured indicates the backend URL or anon key is missing.
var ErrNotConfigured = errors.New("auth backend not configured")

// Error is an authentication backend failure: the remote session could not
// be invalidated because of a network or backend-side problem.
type Error struct {
	// Op is the operation that failed, e.g. "logout".
	Op string
	// Status is the HTTP status, or 0 for transport failures.
	Status int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth %s (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is or wraps an *Error.
func IsAuthError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}
