// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/receipta-tui/internal/route"
)

// Protected application paths.
const (
	PathDashboard = "/dashboard"
	PathReceipts  = "/receipts"
	PathDraws     = "/draws"
	PathProfile   = "/profile"
)

// Screen is one navigable route of the application.
type Screen struct {
	Path string
	// Key is the single key that jumps to the screen.
	Key  string
	Body string // markdown
}

// Title derives a display title from the path: "/forgot-password" becomes
// "Forgot Password", "/" becomes "Home".
func (s Screen) Title() string {
	return TitleFor(s.Path)
}

var titleCaser = cases.Title(language.English)

// TitleFor derives a display title from a route path.
func TitleFor(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "Home"
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return titleCaser.String(strings.ReplaceAll(trimmed, "-", " "))
}

// Screens is the ordered route table shown in the navigation bar.
var Screens = []Screen{
	{Path: route.PathHome, Key: "1", Body: homeBody},
	{Path: route.PathLogin, Key: "2", Body: "## Sign in\n\nUse `receipta config init` to store your backend credentials, then open the dashboard."},
	{Path: route.PathRegister, Key: "3", Body: "## Create an account\n\nRegistration happens in the browser. Come back here once your email is confirmed."},
	{Path: route.PathForgotPassword, Key: "4", Body: "## Forgot password\n\nA reset link will be sent to the email on file."},
	{Path: PathDashboard, Key: "5", Body: "## Dashboard\n\nYour receipts and prize draws at a glance.\n\nThis screen is **protected**: after a period without keyboard or mouse input you are signed out automatically."},
	{Path: PathReceipts, Key: "6", Body: "## Receipts\n\n| Store | Amount | Entries |\n|---|---|---|\n| Corner Market | 42.10 | 4 |\n| Fuel Stop | 63.00 | 6 |"},
	{Path: PathDraws, Key: "7", Body: "## Draws\n\nUpcoming prize draws and the entries you hold for each."},
	{Path: PathProfile, Key: "8", Body: "## Profile\n\nAccount details and notification preferences."},
}

const homeBody = `# receipta

Turn everyday receipts into prize draw entries.

- Press a **number key** to open a screen
- Press **b** to go back and **?** for help
- Protected screens sign you out after a period of inactivity
`

// ScreenFor returns the screen registered for path.
func ScreenFor(path string) (Screen, bool) {
	for _, s := range Screens {
		if s.Path == path {
			return s, true
		}
	}
	return Screen{}, false
}

// ScreenForKey returns the screen bound to key.
func ScreenForKey(key string) (Screen, bool) {
	for _, s := range Screens {
		if s.Key == key {
			return s, true
		}
	}
	return Screen{}, false
}
