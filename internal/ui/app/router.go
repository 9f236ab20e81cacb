// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"path"
	"strings"
)

// DefaultHistoryLimit caps the back stack.
const DefaultHistoryLimit = 50

// Router tracks the current path and the back stack, and tells listeners
// about every change. It is driven from the event loop only.
type Router struct {
	current   string
	history   []string
	limit     int
	listeners []func(path string)
}

// NewRouter returns a router with no current path. The first Navigate
// sets it.
func NewRouter() *Router {
	return &Router{limit: DefaultHistoryLimit}
}

// OnChange registers fn to run after every path change.
func (r *Router) OnChange(fn func(path string)) {
	r.listeners = append(r.listeners, fn)
}

// Navigate moves to p. Navigating to the current path does nothing and
// returns false.
func (r *Router) Navigate(p string) bool {
	p = CleanPath(p)
	if p == r.current {
		return false
	}
	if r.current != "" {
		r.history = append(r.history, r.current)
		if len(r.history) > r.limit {
			r.history = r.history[len(r.history)-r.limit:]
		}
	}
	r.set(p)
	return true
}

// Back returns to the previous path. It returns false when there is none.
func (r *Router) Back() bool {
	if len(r.history) == 0 {
		return false
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.set(prev)
	return true
}

func (r *Router) set(p string) {
	r.current = p
	for _, fn := range r.listeners {
		fn(p)
	}
}

// Current returns the current path, or "" before the first Navigate.
func (r *Router) Current() string { return r.current }

// History returns a copy of the back stack, oldest first.
func (r *Router) History() []string {
	return append([]string(nil), r.history...)
}

// CleanPath normalises a route path: leading slash, no trailing slash,
// no query or fragment.
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
