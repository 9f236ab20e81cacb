// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/receipta-tui/internal/credstore"
	"github.com/jeranaias/receipta-tui/internal/util"
)

// sessionStatus is the --json shape of "session status".
type sessionStatus struct {
	SignedIn          bool      `json:"signed_in"`
	Email             string    `json:"email,omitempty"`
	UserID            string    `json:"user_id,omitempty"`
	ExpiresAt         time.Time `json:"expires_at,omitempty"`
	SavedAt           time.Time `json:"saved_at,omitempty"`
	IdleTimeoutMs     int64     `json:"idle_timeout_ms"`
	LoginPath         string    `json:"login_path"`
	PublicRoutes      []string  `json:"public_routes"`
	BackendConfigured bool      `json:"backend_configured"`
	StorePath         string    `json:"store_path"`
}

func newSessionCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Inspect and store the local session",
	}
	cmd.AddCommand(newSessionStatusCmd(flags), newSessionSaveCmd(flags))
	return cmd
}

func newSessionStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and the idle policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openDeps(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			st := sessionStatus{
				IdleTimeoutMs:     rt.cfg.Session.IdleTimeoutMs,
				LoginPath:         rt.cfg.Session.LoginPath,
				PublicRoutes:      rt.cfg.Classifier().PublicPaths(),
				BackendConfigured: rt.client.IsConfigured(),
				StorePath:         rt.store.Path(),
			}

			creds, err := rt.store.Load(cmd.Context())
			switch {
			case err == nil:
				st.SignedIn = true
				st.Email = creds.Email
				st.UserID = creds.UserID
				st.ExpiresAt = creds.ExpiresAt
				st.SavedAt = creds.SavedAt
			case errors.Is(err, credstore.ErrNotFound):
			default:
				return err
			}

			if flags.jsonOutput {
				return NewJSONResponse("session status", st).Print(cmd.OutOrStdout())
			}

			if st.SignedIn {
				printField(cmd, "Signed in", okStyle.Render("yes"))
				printField(cmd, "Email", util.TruncateWidth(st.Email, 48))
				printField(cmd, "User", util.MaskSecret(st.UserID))
				if !st.ExpiresAt.IsZero() {
					printField(cmd, "Token expires", st.ExpiresAt.Local().Format(time.RFC1123))
				}
			} else {
				printField(cmd, "Signed in", "no")
			}
			printField(cmd, "Idle timeout", rt.cfg.IdleTimeout().String())
			printField(cmd, "Login route", st.LoginPath)
			printField(cmd, "Public routes", strings.Join(st.PublicRoutes, " "))
			backend := "not configured"
			if st.BackendConfigured {
				backend = rt.client.BaseURL()
			}
			printField(cmd, "Backend", backend)
			return nil
		},
	}
}

func newSessionSaveCmd(flags *globalFlags) *cobra.Command {
	var (
		creds     credstore.Credentials
		expiresIn time.Duration
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store tokens from a browser sign-in",
		Long: `Store tokens from a browser sign-in in the encrypted local store.

Sign in on the web, copy the access and refresh tokens, and save them here so
the terminal client can end the session on the backend when it signs out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.AccessToken == "" {
				return errors.New("--access-token is required")
			}
			if expiresIn > 0 {
				creds.ExpiresAt = time.Now().Add(expiresIn)
			}

			rt, err := openDeps(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.store.Save(cmd.Context(), creds); err != nil {
				return err
			}
			printOK(cmd, fmt.Sprintf("Session saved to %s", rt.store.Path()))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.AccessToken, "access-token", "", "access token (JWT)")
	cmd.Flags().StringVar(&creds.RefreshToken, "refresh-token", "", "refresh token")
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.UserID, "user-id", "", "account id")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", time.Hour, "access token lifetime")
	return cmd
}
