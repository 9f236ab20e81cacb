// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds the styled components for the application.
type Theme struct {
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	App    lipgloss.Style
	Header lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style

	// Navigation
	NavItem       lipgloss.Style
	NavItemActive lipgloss.Style
	NavKey        lipgloss.Style

	// Status bar
	StatusBar       lipgloss.Style
	StatusLabel     lipgloss.Style
	StatusValue     lipgloss.Style
	RouteProtected  lipgloss.Style
	RoutePublic     lipgloss.Style
	GuardWatching   lipgloss.Style
	GuardInactive   lipgloss.Style
	GuardSigningOut lipgloss.Style
}

// NewTheme creates a theme for the named variant. Unknown names fall back to
// dark. The color profile honours NO_COLOR and CLICOLOR_FORCE.
func NewTheme(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != ThemeLight {
		name = ThemeDark
	}

	profile := termenv.EnvColorProfile()
	isDark := name == ThemeDark
	lipgloss.SetColorProfile(profile)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.NavItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.NavItemActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 1)
	t.NavKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusLabel = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusValue = lipgloss.NewStyle().Foreground(TextPrimary)

	t.RouteProtected = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.RoutePublic = lipgloss.NewStyle().Foreground(Cyan)

	t.GuardWatching = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.GuardInactive = lipgloss.NewStyle().Foreground(TextMuted)
	t.GuardSigningOut = lipgloss.NewStyle().Foreground(Amber).Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode returns the current layout mode based on width.
func (t *Theme) LayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
