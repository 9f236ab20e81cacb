// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package app is the receipta terminal application: the root Bubble Tea
model, its router and the glue between terminal input and the session
guard.

# Event loop

Bubble Tea runs Update on a single goroutine. The session guard and its
watchdog rely on that: timer expiries and logout results are posted back
through ProgramExecutor, which wraps each function in a message that
Update runs. Keyboard and mouse input is translated by ActivitySignals and
published on the idle bus from inside Update.

# Routing

Router holds the current path and a back stack. Every change is reported
to Guard.OnRouteChanged, including the redirect to the login route that
the guard itself requests after an idle sign-out.

# Usage

	m, err := app.New(app.Options{
		Auth:       session,
		Classifier: cfg.Classifier(),
		Timeout:    cfg.IdleTimeout(),
	})
	if err != nil {
		return err
	}
	return app.Run(ctx, m, app.RunOptions{Mouse: true, AltScreen: true})
*/
package app
