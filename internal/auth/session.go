// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/receipta-tui/internal/credstore"
	"github.com/jeranaias/receipta-tui/internal/logging"
)

// CredentialStore is the subset of *credstore.Store the session needs.
type CredentialStore interface {
	Load(ctx context.Context) (*credstore.Credentials, error)
	Clear(ctx context.Context) error
}

// RemoteLogout revokes a session on the backend. *Client implements it.
type RemoteLogout interface {
	Logout(ctx context.Context, accessToken string) error
}

// Session ends the signed-in user's session both remotely and locally.
type Session struct {
	remote RemoteLogout
	store  CredentialStore
	log    logging.Logger
}

// NewSession binds a backend client and a credential store.
func NewSession(remote RemoteLogout, store CredentialStore, logger logging.Logger) *Session {
	return &Session{
		remote: remote,
		store:  store,
		log:    logging.OrDiscard(logger),
	}
}

// Logout revokes the remote session, then clears local credentials whether
// or not the remote call succeeded. With nothing stored it does nothing and
// succeeds. Failures are returned as *Error.
func (s *Session) Logout(ctx context.Context) error {
	creds, err := s.store.Load(ctx)
	if errors.Is(err, credstore.ErrNotFound) {
		s.log.Debug("logout: no stored session")
		return nil
	}
	if err != nil {
		// Unreadable credentials are dropped too.
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.log.Error("logout: failed to clear credentials", "err", clearErr)
		}
		return &Error{Op: "logout", Err: fmt.Errorf("failed to load credentials: %w", err)}
	}

	var remoteErr error
	if creds.AccessToken != "" && s.remote != nil {
		if err := s.remote.Logout(ctx, creds.AccessToken); err != nil {
			s.log.Warn("logout: remote revocation failed", "err", err)
			remoteErr = err
			if !IsAuthError(err) {
				remoteErr = &Error{Op: "logout", Err: err}
			}
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		s.log.Error("logout: failed to clear credentials", "err", err)
		if remoteErr != nil {
			return remoteErr
		}
		return &Error{Op: "logout", Err: fmt.Errorf("failed to clear credentials: %w", err)}
	}
	if remoteErr != nil {
		return remoteErr
	}

	s.log.Info("logout: session ended", "user", creds.UserID)
	return nil
}
