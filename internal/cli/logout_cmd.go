// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jeranaias/receipta-tui/internal/audit"
	"github.com/jeranaias/receipta-tui/internal/auth"
)

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session on the backend and clear it locally",
		Long: `End the stored session on the backend and clear it locally.

Local credentials are cleared even when the backend cannot be reached; the
command then exits non-zero so scripts can tell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openDeps(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.LogoutTimeout())
			defer cancel()

			err = rt.session.Logout(ctx)
			if err != nil {
				rt.log.Error("logout failed", "err", err)
				rt.record(audit.EventLogoutFailed, map[string]string{"reason": "manual", "error": err.Error()})
			} else {
				rt.record(audit.EventLogout, map[string]string{"reason": "manual"})
			}

			if flags.jsonOutput {
				resp := NewJSONResponse("logout", map[string]bool{"logged_out": err == nil})
				if err != nil {
					resp = NewJSONErrorResponse("logout", err)
				}
				if perr := resp.Print(cmd.OutOrStdout()); perr != nil {
					return perr
				}
				return err
			}

			if errors.Is(err, auth.ErrNotConfigured) {
				printWarn(cmd, "Backend not configured; local credentials cleared only.")
				return nil
			}
			if err != nil {
				printWarn(cmd, "Local credentials cleared, but the backend session may still be active.")
				return err
			}
			printOK(cmd, "Signed out.")
			return nil
		},
	}
}
