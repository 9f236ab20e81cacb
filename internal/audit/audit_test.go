// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := NewLogger(filepath.Join(t.TempDir(), "logs", "audit.log"))
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { l.Close() })
	return l
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestEvent_ToLogLine(t *testing.T) {
	e := Event{
		Timestamp: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		EventType: EventIdleTimeout,
		SessionID: "abc",
		Metadata:  map[string]string{"route": "/dashboard", "timeout": "3m0s"},
	}
	assert.Equal(t, "2025-03-01 09:30:00 | SESSION_IDLE_TIMEOUT | session=abc route=/dashboard timeout=3m0s", e.ToLogLine())

	e.SessionID = ""
	e.Metadata = map[string]string{"error": "auth logout (HTTP 502): boom"}
	assert.Equal(t, `2025-03-01 09:30:00 | SESSION_IDLE_TIMEOUT | session=- error="auth logout (HTTP 502): boom"`, e.ToLogLine())
}

func TestLogger_LogEvent(t *testing.T) {
	l := newTestLogger(t)

	require.NoError(t, l.LogEvent("s1", EventWatchStarted, map[string]string{"route": "/receipts"}))
	require.NoError(t, l.LogEvent("s1", EventWatchStopped, nil))

	lines := readLines(t, l.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-03-01 09:30:00 | SESSION_WATCH_STARTED | session=s1 route=/receipts", lines[0])
	assert.Equal(t, "2025-03-01 09:30:00 | SESSION_WATCH_STOPPED | session=s1", lines[1])
}

func TestLogger_RedactsMetadata(t *testing.T) {
	l := newTestLogger(t)

	require.NoError(t, l.LogEvent("s1", EventLogoutFailed, map[string]string{
		"error": "request failed: Authorization: Bearer abc.def.ghi",
		"jwt":   "eyJhbGciOi.eyJzdWIiOi.c2lnbmF0dXJl",
	}))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abc.def.ghi")
	assert.NotContains(t, string(data), "c2lnbmF0dXJl")
	assert.Contains(t, string(data), "[TOKEN_REDACTED]")
	assert.Contains(t, string(data), "[JWT_REDACTED]")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "passphrase=[REDACTED]", Redact("passphrase=hunter2"))
	assert.Equal(t, "anon_key=[REDACTED]", Redact("anon_key: xyz"))
	assert.Equal(t, "nothing secret", Redact("nothing secret"))
}

func TestLogger_Rotation(t *testing.T) {
	l := newTestLogger(t)
	l.SetMaxSize(64)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.LogEvent("s1", EventWatchStarted, map[string]string{"route": "/dashboard"}))
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(l.Path()), "audit_*.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestLogger_Concurrent(t *testing.T) {
	l := newTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = l.LogEvent("s", EventWatchStarted, nil)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, readLines(t, l.Path()), 200)
}

func TestLogger_Closed(t *testing.T) {
	l := newTestLogger(t)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.LogEvent("s", EventLogout, nil), ErrClosed)
}
