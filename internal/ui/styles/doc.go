// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the receipta TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColor values so the same palette works on
light and dark terminals:

  - Purple - titles and the active navigation item
  - Cyan - brand color and public routes
  - Emerald - success toasts and an active session watch
  - Amber - protected routes and sign-out in progress
  - Rose - errors and failed sign-out

Status text always pairs color with an ASCII indicator from StatusIndicators
([OK], [X], [!], [i]) for colorblind users.

# Themes (theme.go)

NewTheme builds the style set for "dark" or "light". The terminal color
profile comes from termenv.EnvColorProfile, so NO_COLOR disables color
output entirely.

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	header := theme.Header.Render("receipta")
*/
package styles
