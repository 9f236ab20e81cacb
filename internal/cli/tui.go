// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/receipta-tui/internal/config"
	"github.com/jeranaias/receipta-tui/internal/ui/app"
	"github.com/jeranaias/receipta-tui/internal/ui/styles"
)

// ErrNotInteractive is returned when the UI is started without a terminal.
var ErrNotInteractive = errors.New("receipta needs an interactive terminal; run 'receipta --help' for non-interactive commands")

type runFlags struct {
	route   string
	noMouse bool
	noWatch bool
}

func runTUI(cmd *cobra.Command, flags *globalFlags, run *runFlags) error {
	if !isTTY() {
		return ErrNotInteractive
	}

	rt, err := openDeps(flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	m, err := app.New(app.Options{
		Auth:          rt.session,
		Classifier:    rt.cfg.Classifier(),
		Timeout:       rt.cfg.IdleTimeout(),
		LogoutTimeout: rt.cfg.LogoutTimeout(),
		LoginPath:     rt.cfg.Session.LoginPath,
		InitialPath:   run.route,
		Theme:         styles.NewTheme(rt.cfg.UI.Theme),
		Logger:        rt.log,
		Audit:         rt.auditor(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.RunOptions{
		Mouse:     rt.cfg.UI.Mouse && !run.noMouse,
		AltScreen: true,
	}
	if !run.noWatch && rt.configExists() {
		opts.OnStart = func(p *app.ProgramExecutor) {
			startConfigWatcher(rt, p)
		}
	}

	rt.log.Info("starting ui",
		"session", m.Guard().SessionID(),
		"idle_timeout", rt.cfg.IdleTimeout(),
		"route", run.route,
	)
	err = app.Run(ctx, m, opts)
	rt.log.Info("ui stopped", "err", err)
	return err
}

// startConfigWatcher forwards config file reloads to the running program.
func startConfigWatcher(rt *deps, p *app.ProgramExecutor) {
	w, err := config.NewWatcher(rt.cfgPath, config.DefaultDebounce, func(cfg *config.Config, err error) {
		p.Send(app.ConfigReloadedMsg{Config: cfg, Err: err})
	}, rt.log)
	if err != nil {
		rt.log.Warn("config watcher unavailable", "err", err)
		return
	}
	if err := w.Start(); err != nil {
		rt.log.Warn("config watcher unavailable", "err", err)
		w.Close()
		return
	}
	rt.watcher = w
}
