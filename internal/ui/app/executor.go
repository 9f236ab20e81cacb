// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries a posted function into Update.
type runMsg struct {
	fn func()
}

// Sender is the part of *tea.Program the executor needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramExecutor posts work onto the Bubble Tea event loop. Functions
// posted before Attach are queued and delivered in order, from a separate
// goroutine, once a program is attached.
//
// Post blocks until the program accepts the message, so it must never be
// called from inside Update.
type ProgramExecutor struct {
	mu      sync.Mutex
	sender  Sender
	pending []func()
}

// NewProgramExecutor returns an executor with no program attached.
func NewProgramExecutor() *ProgramExecutor {
	return &ProgramExecutor{}
}

// Attach connects the executor to a running program and flushes queued work.
func (e *ProgramExecutor) Attach(s Sender) {
	e.mu.Lock()
	e.sender = s
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	go func() {
		for _, fn := range pending {
			s.Send(runMsg{fn: fn})
		}
	}()
}

// Post implements idle.Executor.
func (e *ProgramExecutor) Post(fn func()) {
	e.mu.Lock()
	s := e.sender
	if s == nil {
		e.pending = append(e.pending, fn)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	s.Send(runMsg{fn: fn})
}

// Send delivers msg to the attached program. Without a program the
// message is dropped.
func (e *ProgramExecutor) Send(msg tea.Msg) {
	e.mu.Lock()
	s := e.sender
	e.mu.Unlock()
	if s != nil {
		s.Send(msg)
	}
}

// Pending returns how many functions wait for a program.
func (e *ProgramExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}
