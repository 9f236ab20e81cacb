// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package route decides whether a navigable path is public or protected.
//
// Matching is exact: a path is public only when it appears verbatim in the
// allow-list. Nested paths under a public prefix, trailing slashes and case
// variants are all protected, so ambiguous routes keep the idle watchdog on.
package route

// Classification is the access class of a route path.
type Classification int

const (
	// Protected routes require an authenticated session. It is the zero
	// value so unknown paths fail toward running the watchdog.
	Protected Classification = iota
	// Public routes are reachable without a session.
	Public
)

// String returns the lowercase name of the classification.
func (c Classification) String() string {
	switch c {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

// Public entry points of the application.
const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathAuthCallback   = "/auth/callback"
)

// DefaultPublicPaths is the ordered public allow-list.
var DefaultPublicPaths = []string{
	PathHome,
	PathLogin,
	PathRegister,
	PathForgotPassword,
	PathResetPassword,
	PathAuthCallback,
}

// Classifier maps paths to a Classification using a fixed allow-list.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	paths  []string
	public map[string]struct{}
}

// NewClassifier builds a classifier from the given public paths, keeping
// their order and dropping duplicates. With no paths it uses
// DefaultPublicPaths.
func NewClassifier(paths ...string) *Classifier {
	if len(paths) == 0 {
		paths = DefaultPublicPaths
	}

	c := &Classifier{
		paths:  make([]string, 0, len(paths)),
		public: make(map[string]struct{}, len(paths)),
	}
	for _, p := range paths {
		if _, dup := c.public[p]; dup {
			continue
		}
		c.public[p] = struct{}{}
		c.paths = append(c.paths, p)
	}
	return c
}

// Classify returns Public if path is in the allow-list, Protected otherwise.
func (c *Classifier) Classify(path string) Classification {
	if _, ok := c.public[path]; ok {
		return Public
	}
	return Protected
}

// IsPublic reports whether path is in the allow-list.
func (c *Classifier) IsPublic(path string) bool {
	return c.Classify(path) == Public
}

// PublicPaths returns a copy of the allow-list in configuration order.
func (c *Classifier) PublicPaths() []string {
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

var defaultClassifier = NewClassifier()

// Classify classifies path against DefaultPublicPaths.
func Classify(path string) Classification {
	return defaultClassifier.Classify(path)
}
