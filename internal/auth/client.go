// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth talks to the hosted auth backend and ends the local session.
//
// The backend speaks the GoTrue REST dialect. Only session invalidation is
// implemented here; sign-in flows are out of scope for the terminal client.
package auth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default timeout for backend requests.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 * 1024

	userAgent = "receipta/0.1.0"
)

// Client is a minimal GoTrue-compatible auth client.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL (the project URL,
// without the /auth/v1 suffix).
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// IsConfigured reports whether a backend URL and anon key are set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiError is the error body GoTrue returns.
type apiError struct {
	Code    interface{} `json:"code"`
	Message string      `json:"msg"`
	Error   string      `json:"error"`
	Desc    string      `json:"error_description"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Desc, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Logout revokes the session identified by accessToken. A token the backend
// no longer recognises (401, 403, 404) counts as already logged out.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if !c.IsConfigured() {
		return &Error{Op: "logout", Err: ErrNotConfigured}
	}

	endpoint, err := url.JoinPath(c.baseURL, "auth", "v1", "logout")
	if err != nil {
		return &Error{Op: "logout", Err: fmt.Errorf("invalid backend URL: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return &Error{Op: "logout", Err: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: "logout", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	cause := ErrRemoteLogout
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.text() != "" {
		return &Error{Op: "logout", Status: resp.StatusCode, Err: fmt.Errorf("%w: %s", cause, apiErr.text())}
	}
	return &Error{Op: "logout", Status: resp.StatusCode, Err: cause}
}
