// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guard ends the user's session after a period of inactivity on
// protected routes.
//
// The host router calls OnRouteChanged on every navigation. On a protected
// route the guard runs an idle.Watchdog; on a public route it runs none.
// When the watchdog fires the guard logs the user out, tells them why and
// sends them to the login route, even if the logout call failed.
//
// Like the watchdog, a Guard is not locked: every method must be called on
// the event loop behind its Executor.
package guard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/receipta-tui/internal/audit"
	"github.com/jeranaias/receipta-tui/internal/idle"
	"github.com/jeranaias/receipta-tui/internal/logging"
	"github.com/jeranaias/receipta-tui/internal/route"
)

// =============================================================================
// STATE
// =============================================================================

// State is the guard's lifecycle state.
type State int

const (
	// Inactive: no watchdog; the route is public or the guard is closed.
	Inactive State = iota
	// Watching: a watchdog is running and its deadline slides with activity.
	Watching
	// Terminating: idle fired and the logout sequence is in flight.
	Terminating
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Watching:
		return "watching"
	case Terminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Severity classifies a user notification.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "success"
}

// Notifier shows a message to the user. Fire and forget.
type Notifier interface {
	Notify(sev Severity, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(sev Severity, msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(sev Severity, msg string) { f(sev, msg) }

// Navigator moves the host to another route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Logouter invalidates the remote session and clears local credentials.
// It must be idempotent. Remote failures are reported as *auth.Error.
type Logouter interface {
	Logout(ctx context.Context) error
}

// LogouterFunc adapts a function to Logouter.
type LogouterFunc func(ctx context.Context) error

// Logout implements Logouter.
func (f LogouterFunc) Logout(ctx context.Context) error { return f(ctx) }

// Auditor records security events. *audit.Logger implements it.
type Auditor interface {
	LogEvent(sessionID, eventType string, metadata map[string]string) error
}

// =============================================================================
// OPTIONS
// =============================================================================

// User-facing messages shown after an idle logout.
const (
	MsgSessionExpired = "Your session ended due to inactivity."
	MsgLogoutFailed   = "We could not sign you out cleanly. Please sign in again."
)

// DefaultLogoutTimeout bounds the logout call when Options leaves it unset.
const DefaultLogoutTimeout = 10 * time.Second

var (
	// ErrInvalidTimeout is returned for a non-positive idle timeout.
	ErrInvalidTimeout = idle.ErrInvalidTimeout

	// ErrMissingCollaborator is returned by New when a required option is nil.
	ErrMissingCollaborator = errors.New("guard: bus, executor, auth, notifier and navigator are required")

	// ErrLoginPathProtected is returned by New when the login path would
	// itself start a watchdog.
	ErrLoginPathProtected = errors.New("guard: login path must be a public route")
)

// Options configures a Guard.
type Options struct {
	// Classifier decides which routes are public. Defaults to the built-in
	// allow-list.
	Classifier *route.Classifier

	// Timeout is the idle window. Must be positive.
	Timeout time.Duration

	Bus      *idle.Bus
	Executor idle.Executor
	Clock    idle.Clock

	Auth      Logouter
	Notifier  Notifier
	Navigator Navigator

	// LoginPath is where the user is sent after an idle logout.
	// Defaults to route.PathLogin.
	LoginPath string

	// LogoutTimeout bounds the logout call. Defaults to DefaultLogoutTimeout.
	LogoutTimeout time.Duration

	Logger logging.Logger
	Audit  Auditor

	// OnStateChange, if set, is called on the event loop after every
	// state transition.
	OnStateChange func(State)
}

// =============================================================================
// GUARD
// =============================================================================

// Guard owns at most one watchdog at a time.
type Guard struct {
	classifier    *route.Classifier
	timeout       time.Duration
	bus           *idle.Bus
	exec          idle.Executor
	clock         idle.Clock
	auth          Logouter
	notifier      Notifier
	nav           Navigator
	loginPath     string
	logoutTimeout time.Duration
	log           logging.Logger
	audit         Auditor
	onState       func(State)

	sessionID string
	state     State
	path      string
	wd        *idle.Watchdog
	closed    bool
}

// New validates opts and returns an inactive guard.
func New(opts Options) (*Guard, error) {
	if opts.Timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if opts.Bus == nil || opts.Executor == nil || opts.Auth == nil || opts.Notifier == nil || opts.Navigator == nil {
		return nil, ErrMissingCollaborator
	}
	if opts.Classifier == nil {
		opts.Classifier = route.NewClassifier()
	}
	if opts.Clock == nil {
		opts.Clock = idle.SystemClock
	}
	if opts.LoginPath == "" {
		opts.LoginPath = route.PathLogin
	}
	if !opts.Classifier.IsPublic(opts.LoginPath) {
		return nil, ErrLoginPathProtected
	}
	if opts.LogoutTimeout <= 0 {
		opts.LogoutTimeout = DefaultLogoutTimeout
	}

	return &Guard{
		classifier:    opts.Classifier,
		timeout:       opts.Timeout,
		bus:           opts.Bus,
		exec:          opts.Executor,
		clock:         opts.Clock,
		auth:          opts.Auth,
		notifier:      opts.Notifier,
		nav:           opts.Navigator,
		loginPath:     opts.LoginPath,
		logoutTimeout: opts.LogoutTimeout,
		log:           logging.OrDiscard(opts.Logger),
		audit:         opts.Audit,
		onState:       opts.OnStateChange,
		sessionID:     uuid.NewString(),
	}, nil
}

// OnRouteChanged re-evaluates the guard for path. Navigation alone never
// resets a running watchdog, and repeating the same path changes nothing.
func (g *Guard) OnRouteChanged(path string) {
	if g.closed {
		return
	}
	g.path = path

	// A new watchdog waits until the running termination completes.
	if g.state == Terminating {
		return
	}

	switch g.classifier.Classify(path) {
	case route.Public:
		if g.wd != nil {
			g.stopWatchdog("public_route")
		}
	case route.Protected:
		if g.wd == nil {
			g.startWatchdog()
		}
	}
}

func (g *Guard) startWatchdog() {
	var wd *idle.Watchdog
	wd, err := idle.Start(idle.Config{
		Timeout:  g.timeout,
		Bus:      g.bus,
		Executor: g.exec,
		Clock:    g.clock,
		Logger:   g.log,
	}, func() { g.handleIdle(wd) })
	if err != nil {
		g.log.Error("failed to start idle watchdog", "err", err)
		return
	}

	g.wd = wd
	g.setState(Watching)
	g.log.Info("session watch started", "route", g.path, "timeout", g.timeout)
	g.record(audit.EventWatchStarted, map[string]string{
		"route":    g.path,
		"timeout":  g.timeout.String(),
		"watchdog": wd.ID(),
	})
}

func (g *Guard) stopWatchdog(reason string) {
	wd := g.wd
	g.wd = nil
	wd.Stop()
	g.setState(Inactive)
	g.log.Info("session watch stopped", "route", g.path, "reason", reason)
	g.record(audit.EventWatchStopped, map[string]string{
		"route":    g.path,
		"reason":   reason,
		"watchdog": wd.ID(),
	})
}

// handleIdle is the watchdog's idle callback.
func (g *Guard) handleIdle(wd *idle.Watchdog) {
	if g.closed || wd != g.wd {
		return
	}
	g.wd = nil
	wd.Stop()
	g.setState(Terminating)

	g.log.Info("idle timeout, signing out", "route", g.path, "timeout", g.timeout)
	g.record(audit.EventIdleTimeout, map[string]string{
		"route":    g.path,
		"timeout":  g.timeout.String(),
		"watchdog": wd.ID(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), g.logoutTimeout)
	go func() {
		defer cancel()
		err := g.auth.Logout(ctx)
		g.exec.Post(func() { g.finishTermination(err) })
	}()
}

// finishTermination runs on the loop once Logout returns. A logout error is
// reported and swallowed; navigation to the login route always happens.
func (g *Guard) finishTermination(err error) {
	if err != nil {
		g.log.Error("idle logout failed", "err", err)
		g.record(audit.EventLogoutFailed, map[string]string{
			"reason": "idle",
			"error":  err.Error(),
		})
	} else {
		g.record(audit.EventLogout, map[string]string{"reason": "idle"})
	}

	g.setState(Inactive)
	if g.closed {
		return
	}

	if err != nil {
		g.notifier.Notify(SeverityError, MsgLogoutFailed)
	} else {
		g.notifier.Notify(SeveritySuccess, MsgSessionExpired)
	}
	g.nav.Navigate(g.loginPath)
}

// SetTimeout changes the idle window. A running watchdog is replaced by a
// fresh one using d; its deadline is never edited in place.
func (g *Guard) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidTimeout
	}
	if d == g.timeout {
		return nil
	}
	g.timeout = d
	if g.closed || g.wd == nil {
		return nil
	}

	g.stopWatchdog("reconfigured")
	g.startWatchdog()
	return nil
}

// Close stops any running watchdog before returning. Later route changes
// are ignored. Safe to call more than once.
func (g *Guard) Close() {
	if g.closed {
		return
	}
	if g.wd != nil {
		g.stopWatchdog("closed")
	}
	g.closed = true
}

func (g *Guard) setState(s State) {
	if g.state == s {
		return
	}
	g.state = s
	if g.onState != nil {
		g.onState(s)
	}
}

func (g *Guard) record(event string, metadata map[string]string) {
	if g.audit == nil {
		return
	}
	if err := g.audit.LogEvent(g.sessionID, event, metadata); err != nil {
		g.log.Warn("audit write failed", "event", event, "err", err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (g *Guard) State() State { return g.state }

// Path returns the last route passed to OnRouteChanged.
func (g *Guard) Path() string { return g.path }

// Watchdog returns the running watchdog, or nil.
func (g *Guard) Watchdog() *idle.Watchdog { return g.wd }

// Timeout returns the configured idle window.
func (g *Guard) Timeout() time.Duration { return g.timeout }

// Remaining returns the time left before idle fires, or 0 when no watchdog
// is running.
func (g *Guard) Remaining() time.Duration {
	if g.wd == nil {
		return 0
	}
	return g.wd.Remaining()
}

// SessionID identifies this guard in the audit trail.
func (g *Guard) SessionID() string { return g.sessionID }

// Closed reports whether Close has been called.
func (g *Guard) Closed() bool { return g.closed }

// LoginPath returns the route used after an idle logout.
func (g *Guard) LoginPath() string { return g.loginPath }
