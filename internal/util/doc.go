// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the receipta packages.
//
// File Operations:
//   - AtomicWriteFile, AtomicWriteFileWithDir: crash-safe writes for the
//     config file and the credential key file
//
// String Utilities:
//   - TruncateWidth, PadRight: terminal-cell aware layout for CLI tables
//   - MaskSecret: partial display of keys and tokens
package util
