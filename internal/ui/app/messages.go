// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/receipta-tui/internal/config"
)

// NavigateMsg asks the model to move to Path.
type NavigateMsg struct {
	Path string
}

// Navigate returns a command that produces a NavigateMsg.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// ConfigReloadedMsg delivers the result of a config file reload.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// sessionTickMsg refreshes the status bar countdown.
type sessionTickMsg time.Time

// SessionTickInterval is how often the status bar countdown refreshes.
const SessionTickInterval = 500 * time.Millisecond

func sessionTick() tea.Cmd {
	return tea.Tick(SessionTickInterval, func(t time.Time) tea.Msg {
		return sessionTickMsg(t)
	})
}
