// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	s, err := Open(path, "correct horse battery staple")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sample() Credentials {
	return Credentials{
		UserID:       "7d1f0a3e-5c2b-4f7e-9a1d-0e2c3b4a5f60",
		Email:        "ana@example.com",
		AccessToken:  "eyJhbGciOiJIUzI1NiJ9.access.sig",
		RefreshToken: "refresh-abc123",
		ExpiresAt:    time.Unix(1767225600, 0),
		SavedAt:      time.Unix(1767222000, 0),
	}
}

func TestOpen_RequiresPassphrase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "store.db"), "")
	assert.ErrorIs(t, err, ErrNoPassphrase)
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveLoad(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), *got)

	ok, err := s.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_SaveReplaces(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample()))
	next := sample()
	next.AccessToken = "rotated"
	next.ExpiresAt = time.Time{}
	require.NoError(t, s.Save(ctx, next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.AccessToken)
	assert.True(t, got.ExpiresAt.IsZero())
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_TokensAreSealedOnDisk(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Save(context.Background(), sample()))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	wal, _ := os.ReadFile(path + "-wal")
	raw = append(raw, wal...)

	assert.False(t, bytes.Contains(raw, []byte(sample().AccessToken)))
	assert.False(t, bytes.Contains(raw, []byte(sample().RefreshToken)))
}

func TestStore_ReopenWithSamePassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path, "pass-1")
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sample()))
	require.NoError(t, s.Close())

	s, err = Open(path, "pass-1")
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample().AccessToken, got.AccessToken)
}

func TestStore_WrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path, "pass-1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path, "pass-2")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestStore_ClosedOperations(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.Save(ctx, sample()), ErrClosed)
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Clear(ctx), ErrClosed)
	_, err = s.Exists(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSeal_FieldBinding(t *testing.T) {
	s, _ := openTemp(t)

	sealed, err := s.seal("access_token", []byte("secret"))
	require.NoError(t, err)

	plain, err := s.open("access_token", sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(plain))

	_, err = s.open("refresh_token", sealed)
	assert.Error(t, err)

	_, err = s.open("access_token", sealed[:4])
	assert.Error(t, err)
}

func TestLoadOrCreateKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "store.key")

	first, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Len(t, first, KeySize*2)

	second, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("key file mode = %v, want no group/other access", info.Mode().Perm())
	}
}

func TestLoadOrCreateKeyFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.key")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))

	_, err := LoadOrCreateKeyFile(path)
	assert.Error(t, err)
}
