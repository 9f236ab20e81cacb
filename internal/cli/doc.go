// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the receipta command line.
//
// Commands:
//
//	receipta                  open the interactive UI
//	receipta config show      print the effective config (secrets redacted)
//	receipta config path      print the config file path
//	receipta config get KEY   print one setting
//	receipta config init      create the config file interactively
//	receipta session status   show the stored session and idle policy
//	receipta session save     store tokens from a browser sign-in
//	receipta logout           end the stored session
//	receipta version          print build information
//
// Every command accepts --config and --json.
package cli
