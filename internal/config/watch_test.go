// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reload struct {
	cfg *Config
	err error
}

func startWatcher(t *testing.T, path string) chan reload {
	t.Helper()
	ch := make(chan reload, 8)
	w, err := NewWatcher(path, 20*time.Millisecond, func(cfg *Config, err error) {
		ch <- reload{cfg, err}
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Close() })
	return ch
}

// waitReload returns the first reload matching ok. Intermediate states of a
// non-atomic write may be reported first.
func waitReload(t *testing.T, ch chan reload, ok func(reload) bool) reload {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case r := <-ch:
			if ok(r) {
				return r
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
			return reload{}
		}
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[session]\nidle_timeout_ms = 1000\n")

	ch := startWatcher(t, path)
	writeFile(t, path, "[session]\nidle_timeout_ms = 2000\n")

	r := waitReload(t, ch, func(r reload) bool {
		return r.err == nil && r.cfg.IdleTimeout() == 2*time.Second
	})
	assert.Equal(t, int64(2000), r.cfg.Session.IdleTimeoutMs)
}

func TestWatcher_ReportsInvalidConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[session]\nidle_timeout_ms = 1000\n")

	ch := startWatcher(t, path)
	writeFile(t, path, "[session]\nidle_timeout_ms = -5\n")

	r := waitReload(t, ch, func(r reload) bool { return r.err != nil })
	assert.Nil(t, r.cfg)
	assert.Contains(t, r.err.Error(), "session.idle_timeout_ms")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "")

	ch := startWatcher(t, path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.log"), []byte("x"), 0600))

	select {
	case r := <-ch:
		t.Fatalf("unexpected reload: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "")

	w, err := NewWatcher(path, 0, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
