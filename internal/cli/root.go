// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	jsonOutput bool
}

// NewRootCmd builds the receipta command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	run := &runFlags{}

	root := &cobra.Command{
		Use:   "receipta",
		Short: "receipta - receipts in, prize draw entries out",
		Long: `receipta is the terminal client for the receipta service.

Run it without a command to open the interactive UI. Protected screens sign
you out automatically after a period without keyboard or mouse input
(session.idle_timeout_ms, 3 minutes by default).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags, run)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.receipta/config.toml)")
	root.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "output in JSON format")

	root.Flags().StringVar(&run.route, "route", "/", "route to open first")
	root.Flags().BoolVar(&run.noMouse, "no-mouse", false, "disable mouse reporting")
	root.Flags().BoolVar(&run.noWatch, "no-watch", false, "do not reload the config file when it changes")

	root.AddCommand(
		newConfigCmd(flags),
		newSessionCmd(flags),
		newLogoutCmd(flags),
		newVersionCmd(flags),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
