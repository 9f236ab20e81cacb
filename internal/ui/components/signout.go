// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/receipta-tui/internal/ui/styles"
)

// =============================================================================
// SIGN-OUT OVERLAY
// =============================================================================

// SignOutOverlay covers the screen while an idle sign-out is in flight.
// It has no dismiss key: input during sign-out does not count as activity.
type SignOutOverlay struct {
	visible bool
	spinner spinner.Model

	width  int
	height int
}

// NewSignOutOverlay creates a hidden overlay.
func NewSignOutOverlay() SignOutOverlay {
	return SignOutOverlay{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Amber)),
		),
	}
}

// SetSize sets the overlay dimensions.
func (o *SignOutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay and returns the command that starts the spinner.
func (o *SignOutOverlay) Show() tea.Cmd {
	if o.visible {
		return nil
	}
	o.visible = true
	return o.spinner.Tick
}

// Hide hides the overlay. Pending spinner ticks are ignored once hidden.
func (o *SignOutOverlay) Hide() {
	o.visible = false
}

// IsVisible returns whether the overlay is currently visible.
func (o *SignOutOverlay) IsVisible() bool {
	return o.visible
}

// Update advances the spinner and tracks the window size.
func (o SignOutOverlay) Update(msg tea.Msg) (SignOutOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height
	case spinner.TickMsg:
		if !o.visible {
			return o, nil
		}
		var cmd tea.Cmd
		o.spinner, cmd = o.spinner.Update(msg)
		return o, cmd
	}
	return o, nil
}

// View renders the overlay, or "" when hidden.
func (o SignOutOverlay) View() string {
	if !o.visible {
		return ""
	}

	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}

	maxWidth := width - 8
	if maxWidth < 30 {
		maxWidth = 30
	}
	if maxWidth > 56 {
		maxWidth = 56
	}

	title := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true).
		Render(styles.StatusIndicators.Warning + " Session expired")

	body := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8).
		Align(lipgloss.Center).
		Render("You were inactive for too long.")

	status := o.spinner.View() + " " + lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Render("Signing out...")

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", status)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}
