// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/receipta-tui/internal/logging"
)

var (
	// ErrInvalidTimeout is returned by Start when the timeout is not positive.
	ErrInvalidTimeout = errors.New("idle: timeout must be positive")

	// ErrMissingDependency is returned by Start when the bus or executor is nil.
	ErrMissingDependency = errors.New("idle: bus and executor are required")
)

// Config holds the settings for one watchdog.
type Config struct {
	// Timeout is the inactivity window. Must be positive.
	Timeout time.Duration

	// Bus delivers activity signals.
	Bus *Bus

	// Executor runs timer expiry on the event loop.
	Executor Executor

	// Clock defaults to SystemClock.
	Clock Clock

	// Kinds defaults to ActivityKinds.
	Kinds []SignalKind

	// Logger is optional.
	Logger logging.Logger
}

// Watchdog tracks a sliding inactivity deadline and fires its idle callback
// at most once. Every method except ID and Timeout must run on the event
// loop.
type Watchdog struct {
	id      string
	timeout time.Duration
	clock   Clock
	exec    Executor
	log     logging.Logger
	onIdle  func()

	deadline time.Time
	fired    bool
	stopped  bool

	timer   Timer
	gen     uint64
	cancels []func()

	// debugLimit throttles per-signal debug logging; pointer motion
	// arrives in bursts.
	debugLimit *rate.Limiter
}

// Start creates a running watchdog. The deadline begins at now+Timeout and
// onIdle runs on the event loop once the deadline passes with no activity.
func Start(cfg Config, onIdle func()) (*Watchdog, error) {
	if cfg.Timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if cfg.Bus == nil || cfg.Executor == nil {
		return nil, ErrMissingDependency
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = ActivityKinds
	}
	if onIdle == nil {
		onIdle = func() {}
	}

	w := &Watchdog{
		id:         uuid.NewString(),
		timeout:    cfg.Timeout,
		clock:      cfg.Clock,
		exec:       cfg.Executor,
		log:        logging.OrDiscard(cfg.Logger),
		onIdle:     onIdle,
		debugLimit: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	w.deadline = w.clock.Now().Add(w.timeout)
	w.cancels = append(w.cancels, cfg.Bus.Subscribe(kinds, w.handleSignal))
	w.arm(w.timeout)

	w.log.Debug("idle watchdog started", "id", w.id, "timeout", w.timeout)
	return w, nil
}

// arm schedules an expiry check after d. Any previously armed timer is
// invalidated by bumping the generation.
func (w *Watchdog) arm(d time.Duration) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = w.clock.AfterFunc(d, func() {
		w.exec.Post(func() { w.expire(gen) })
	})
}

func (w *Watchdog) handleSignal(sig Signal) {
	if w.fired || w.stopped {
		return
	}
	w.deadline = w.clock.Now().Add(w.timeout)
	if w.debugLimit.Allow() {
		w.log.Debug("activity", "id", w.id, "kind", sig.Kind.String())
	}
}

// expire runs on the event loop when a timer armed with gen goes off.
// The timer is only re-armed here, so a burst of signals costs nothing
// beyond moving the deadline.
func (w *Watchdog) expire(gen uint64) {
	if gen != w.gen || w.fired || w.stopped {
		return
	}

	now := w.clock.Now()
	if now.Before(w.deadline) {
		w.arm(w.deadline.Sub(now))
		return
	}

	w.fired = true
	w.release()
	w.log.Info("idle timeout reached", "id", w.id, "timeout", w.timeout)
	w.onIdle()
}

// Stop cancels the pending deadline and drops all subscriptions. It is safe
// to call in any state and more than once.
func (w *Watchdog) Stop() {
	if w.stopped {
		return
	}
	w.stopped = true
	w.release()
	w.log.Debug("idle watchdog stopped", "id", w.id, "fired", w.fired)
}

func (w *Watchdog) release() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	for _, cancel := range w.cancels {
		cancel()
	}
	w.cancels = nil
}

// ID returns the unique id of this watchdog instance.
func (w *Watchdog) ID() string { return w.id }

// Timeout returns the inactivity window.
func (w *Watchdog) Timeout() time.Duration { return w.timeout }

// Deadline returns the time at which idle fires if no activity arrives.
// It is zero once the watchdog has fired or stopped.
func (w *Watchdog) Deadline() time.Time {
	if w.fired || w.stopped {
		return time.Time{}
	}
	return w.deadline
}

// Remaining returns the time left before the deadline, never negative.
func (w *Watchdog) Remaining() time.Duration {
	d := w.Deadline()
	if d.IsZero() {
		return 0
	}
	if r := d.Sub(w.clock.Now()); r > 0 {
		return r
	}
	return 0
}

// Fired reports whether the idle callback has run.
func (w *Watchdog) Fired() bool { return w.fired }

// Stopped reports whether Stop has been called.
func (w *Watchdog) Stopped() bool { return w.stopped }

// Pending reports whether an expiry timer is armed.
func (w *Watchdog) Pending() bool { return w.timer != nil }
