// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit writes the session audit trail with secret redaction.
package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultMaxFileSize is the default max file size before rotation (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// Event types recorded by the session guard and the host application.
const (
	EventWatchStarted   = "SESSION_WATCH_STARTED"
	EventWatchStopped   = "SESSION_WATCH_STOPPED"
	EventIdleTimeout    = "SESSION_IDLE_TIMEOUT"
	EventLogout         = "SESSION_LOGOUT"
	EventLogoutFailed   = "SESSION_LOGOUT_FAILED"
	EventConfigReloaded = "CONFIG_RELOADED"
)

// ErrClosed is returned when logging to a closed logger.
var ErrClosed = errors.New("audit log is closed")

// =============================================================================
// EVENT
// =============================================================================

// Event is a single audit log entry.
type Event struct {
	Timestamp time.Time
	EventType string
	SessionID string
	Metadata  map[string]string
}

// ToLogLine formats the event as
// "2006-01-02 15:04:05 | EVENT | session=<id> key=value ...".
// Metadata keys are sorted so lines are stable.
func (e *Event) ToLogLine() string {
	var b strings.Builder
	b.WriteString(e.Timestamp.Format("2006-01-02 15:04:05"))
	b.WriteString(" | ")
	b.WriteString(e.EventType)
	b.WriteString(" | session=")
	if e.SessionID == "" {
		b.WriteString("-")
	} else {
		b.WriteString(e.SessionID)
	}

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := e.Metadata[k]
		if strings.ContainsAny(v, " |\t") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

// =============================================================================
// REDACTION
// =============================================================================

var secretPatterns = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-_.]+`), "Bearer [TOKEN_REDACTED]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), "[JWT_REDACTED]"},
	{regexp.MustCompile(`(?i)(access_token|refresh_token|apikey|anon_key|passphrase|password)\s*[=:]\s*\S+`), "$1=[REDACTED]"},
}

// Redact replaces tokens and credentials in input.
func Redact(input string) string {
	for _, sp := range secretPatterns {
		input = sp.pattern.ReplaceAllString(input, sp.replace)
	}
	return input
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger is a thread-safe append-only audit log.
type Logger struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	maxSize int64
	now     func() time.Time
}

// NewLogger opens (or creates) the audit log at path. An empty path uses
// DefaultPath.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{
		path:    path,
		file:    file,
		maxSize: DefaultMaxFileSize,
		now:     time.Now,
	}, nil
}

// Log writes event, stamping it if its timestamp is zero. Metadata values
// are redacted before they reach disk.
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return ErrClosed
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if len(event.Metadata) > 0 {
		clean := make(map[string]string, len(event.Metadata))
		for k, v := range event.Metadata {
			clean[k] = Redact(v)
		}
		event.Metadata = clean
	}

	if err := l.checkRotationLocked(); err != nil {
		return err
	}
	if _, err := l.file.WriteString(event.ToLogLine() + "\n"); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// LogEvent writes an event of the given type.
func (l *Logger) LogEvent(sessionID, eventType string, metadata map[string]string) error {
	return l.Log(Event{
		EventType: eventType,
		SessionID: sessionID,
		Metadata:  metadata,
	})
}

// Rotate moves the current file aside and starts a new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotateLocked()
}

func (l *Logger) rotateLocked() error {
	if l.file == nil {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log for rotation: %w", err)
	}

	ext := filepath.Ext(l.path)
	base := strings.TrimSuffix(l.path, ext)
	rotatedPath := fmt.Sprintf("%s_%s%s", base, l.now().Format("20060102_150405.000000000"), ext)

	if err := os.Rename(l.path, rotatedPath); err != nil {
		l.file, _ = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.file = nil
		return fmt.Errorf("failed to create new audit log after rotation: %w", err)
	}
	l.file = file
	return nil
}

func (l *Logger) checkRotationLocked() error {
	if l.maxSize <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() >= l.maxSize {
		return l.rotateLocked()
	}
	return nil
}

// SetMaxSize sets the size at which the log rotates. Zero disables rotation.
func (l *Logger) SetMaxSize(size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSize = size
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Sync flushes the file to disk.
func (l *Logger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

// Close closes the log. Further writes return ErrClosed.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// DefaultPath returns ~/.receipta/audit.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".receipta", "audit.log")
	}
	return filepath.Join(home, ".receipta", "audit.log")
}
