// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/receipta-tui/internal/guard"
	"github.com/jeranaias/receipta-tui/internal/route"
	"github.com/jeranaias/receipta-tui/internal/ui/styles"
)

// LowRemainingThreshold is when the remaining-time readout turns amber.
const LowRemainingThreshold = 30 * time.Second

// StatusBar is the bottom bar: current route, its access class, the session
// guard state and the time left before the idle sign-out.
type StatusBar struct {
	Path      string
	Class     route.Classification
	State     guard.State
	Remaining time.Duration
	Timeout   time.Duration
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar with the given theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	if theme == nil {
		theme = styles.NewTheme(styles.ThemeDark)
	}
	return &StatusBar{
		Path:  route.PathHome,
		Class: route.Public,
		State: guard.Inactive,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetRoute updates the displayed path and its classification.
func (s *StatusBar) SetRoute(path string, class route.Classification) {
	s.Path = path
	s.Class = class
}

// SetSession updates the guard readout.
func (s *StatusBar) SetSession(state guard.State, remaining, timeout time.Duration) {
	s.State = state
	s.Remaining = remaining
	s.Timeout = timeout
}

// View renders the status bar.
func (s *StatusBar) View() string {
	left := s.routeSegment()
	right := s.sessionSegment()

	inner := s.Width - 2
	if inner < 0 {
		inner = 0
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.
		Width(s.Width).
		MaxWidth(s.Width).
		MaxHeight(1).
		Render(line)
}

func (s *StatusBar) routeSegment() string {
	classStyle := s.theme.RoutePublic
	if s.Class == route.Protected {
		classStyle = s.theme.RouteProtected
	}
	path := s.theme.StatusValue.Render(s.Path)
	if s.Width < 60 {
		return path
	}
	return path + " " + classStyle.Render("["+s.Class.String()+"]")
}

func (s *StatusBar) sessionSegment() string {
	switch s.State {
	case guard.Watching:
		text := styles.StatusIndicators.Active + " session " + FormatRemaining(s.Remaining)
		if s.Remaining <= LowRemainingThreshold {
			return lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).Render(text)
		}
		if s.Width >= 100 && s.Timeout > 0 {
			text += " / " + FormatRemaining(s.Timeout)
		}
		return s.theme.GuardWatching.Render(text)
	case guard.Terminating:
		return s.theme.GuardSigningOut.Render(styles.StatusIndicators.Pending + " signing out")
	default:
		return s.theme.GuardInactive.Render("no session watch")
	}
}

// FormatRemaining formats d as M:SS, rounding up to the next whole second so
// the readout reaches 0:00 only when the time is actually spent.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
