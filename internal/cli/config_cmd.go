// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/receipta-tui/internal/config"
)

// prompter is the part of *liner.State that config init uses.
type prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	Close() error
}

// newPrompter opens an interactive line editor. Replaced in tests.
var newPrompter = func() prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and create the receipta configuration",
		Long: `Show and create the receipta configuration.

The config file is ~/.receipta/config.toml (RECEIPTA_HOME moves the whole
directory). config.yaml and config.json are read when no TOML file exists.
Secrets are redacted in all output.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, path, err := loadConfig(flags)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return NewJSONResponse("config show", map[string]interface{}{
						"path":   path,
						"config": cfg.Redacted(),
					}).Print(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, cfg.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, path, err := loadConfig(flags)
				if err != nil {
					return err
				}
				_, statErr := os.Stat(path)
				exists := statErr == nil
				if flags.jsonOutput {
					return NewJSONResponse("config path", map[string]interface{}{
						"path":   path,
						"exists": exists,
					}).Print(cmd.OutOrStdout())
				}
				if !exists {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (not created yet, run 'receipta config init')\n", path)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting, e.g. session.idle_timeout_ms",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := loadConfig(flags)
				if err != nil {
					return err
				}
				v, err := cfg.Redacted().Get(args[0])
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return NewJSONResponse("config get", map[string]interface{}{args[0]: v}).Print(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatValue(v))
				return nil
			},
		},
		newConfigInitCmd(flags),
	)
	return cmd
}

func formatValue(v interface{}) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprint(v)
}

func newConfigInitCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			p := newPrompter()
			defer p.Close()

			cfg, err := promptConfig(p)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return err
			}
			printOK(cmd, "Wrote "+path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// promptConfig asks for the settings a new install needs. Empty answers
// keep the defaults.
func promptConfig(p prompter) (*config.Config, error) {
	cfg := config.Default()

	ask := func(label, def string) (string, error) {
		prompt := label + ": "
		if def != "" {
			prompt = fmt.Sprintf("%s [%s]: ", label, def)
		}
		answer, err := p.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", errors.New("aborted")
			}
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return def, nil
		}
		return answer, nil
	}

	var err error
	if cfg.Backend.URL, err = ask("Backend URL", cfg.Backend.URL); err != nil {
		return nil, err
	}
	if cfg.Backend.AnonKey, err = ask("Anon key", ""); err != nil {
		return nil, err
	}

	minutes, err := ask("Idle timeout in minutes", strconv.FormatInt(cfg.Session.IdleTimeoutMs/60000, 10))
	if err != nil {
		return nil, err
	}
	m, convErr := strconv.ParseFloat(minutes, 64)
	if convErr != nil || m <= 0 {
		return nil, fmt.Errorf("invalid idle timeout %q", minutes)
	}
	cfg.Session.IdleTimeoutMs = int64(m * 60000)

	pass, err := p.PasswordPrompt("Store passphrase (empty = generated key file): ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return nil, errors.New("aborted")
		}
		return nil, err
	}
	cfg.Storage.Passphrase = pass

	return cfg, nil
}
