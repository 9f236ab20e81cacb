// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "sync"

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs posted functions one at a time on the event loop.
// Post may be called from any goroutine.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func())

// Post implements Executor.
func (f ExecutorFunc) Post(fn func()) {
	f(fn)
}

// =============================================================================
// LOOP
// =============================================================================

// Loop is a goroutine-backed Executor for hosts without their own event
// loop. Posted functions run in order on a single goroutine.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop starts a loop.
func NewLoop() *Loop {
	l := &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.queue:
			select {
			case <-l.done:
				return
			default:
			}
			fn()
		}
	}
}

// Post queues fn. After Close it is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop itself.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// Close stops the loop. Queued functions that have not started are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
