// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for receipta TUI:
// the toast stack, the status bar and the sign-out overlay.
//
// Components are plain values driven by the root model. They hold no
// session logic; the app feeds them the guard state on every tick.
package components
