// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/receipta-tui/internal/ui/styles"
)

// JSONResponse is the envelope for --json output.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	okStyle    = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
)

// printField writes an aligned "label: value" line.
func printField(cmd *cobra.Command, label, value string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", label+":")), value)
}

func printOK(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(styles.StatusIndicators.Success)+" "+msg)
}

func printWarn(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(styles.StatusIndicators.Warning)+" "+msg)
}
