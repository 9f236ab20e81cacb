// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions controls the terminal program.
type RunOptions struct {
	// Mouse enables mouse reporting so pointer movement counts as activity.
	Mouse bool
	// AltScreen runs the UI in the alternate screen buffer.
	AltScreen bool
	// OnStart is called with the program's executor once the program exists
	// and before it starts reading input.
	OnStart func(*ProgramExecutor)
}

// Run runs m until the user quits or ctx is cancelled. The guard is closed
// before Run returns.
func Run(ctx context.Context, m Model, opts RunOptions) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseAllMotion())
	}

	p := tea.NewProgram(m, programOpts...)
	if m.program != nil {
		m.program.Attach(p)
		if opts.OnStart != nil {
			opts.OnStart(m.program)
		}
	}

	_, err := p.Run()
	m.guard.Close()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
