// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/receipta-tui/internal/idle"
)

// ActivitySignals translates a terminal input message into the activity
// signals it represents. Messages that are not user input yield nil.
//
// Every key produces KeyDown; printable keys and space also produce
// KeyPress. A terminal has no touch input, so TouchStart is never produced.
func ActivitySignals(msg tea.Msg) []idle.SignalKind {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			return []idle.SignalKind{idle.KeyDown, idle.KeyPress}
		}
		return []idle.SignalKind{idle.KeyDown}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
			return []idle.SignalKind{idle.PointerDown}
		case tea.MouseRelease:
			return []idle.SignalKind{idle.Click}
		case tea.MouseMotion:
			return []idle.SignalKind{idle.PointerMove}
		case tea.MouseWheelUp, tea.MouseWheelDown:
			return []idle.SignalKind{idle.Scroll}
		}
	}
	return nil
}

// publishActivity publishes the signals for msg on bus and reports whether
// msg was user input.
func publishActivity(bus *idle.Bus, msg tea.Msg) bool {
	kinds := ActivitySignals(msg)
	for _, k := range kinds {
		bus.Publish(idle.NewSignal(k))
	}
	return len(kinds) > 0
}
