// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credstore keeps the signed-in user's session tokens on disk.
//
// Credentials live in a single-row SQLite table. Tokens are sealed with
// XChaCha20-Poly1305 under a key derived from the store passphrase with
// PBKDF2-SHA-256; the salt and a passphrase verifier sit in a meta table.
package credstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/receipta-tui/internal/util"
)

const (
	// SchemaVersion tracks the database schema version for migrations.
	SchemaVersion = 1

	// KeySize is the sealing key size in bytes.
	KeySize = chacha20poly1305.KeySize

	// SaltSize is the PBKDF2 salt size in bytes.
	SaltSize = 16

	// PBKDF2Iterations is the key derivation work factor.
	PBKDF2Iterations = 100000

	verifierPlaintext = "receipta-credstore"
)

var (
	// ErrNotFound is returned by Load when no credentials are stored.
	ErrNotFound = errors.New("credstore: no stored credentials")

	// ErrNoPassphrase is returned by Open when the passphrase is empty.
	ErrNoPassphrase = errors.New("credstore: passphrase is required")

	// ErrWrongPassphrase is returned by Open when the passphrase does not
	// match the one the store was created with.
	ErrWrongPassphrase = errors.New("credstore: wrong passphrase")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("credstore: store is closed")
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS credentials (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    user_id TEXT NOT NULL,
    email TEXT NOT NULL,
    access_token BLOB NOT NULL,
    refresh_token BLOB NOT NULL,
    expires_at INTEGER NOT NULL, -- Unix timestamp, 0 when unknown
    saved_at INTEGER NOT NULL    -- Unix timestamp
);
`

// Credentials is the locally persisted session of the signed-in user.
type Credentials struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	SavedAt      time.Time
}

// Store is an encrypted credential store. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	aead cipher.AEAD
	path string
}

// Open opens or creates the store at path. A new store gets a fresh salt;
// an existing one must be opened with the same passphrase.
func Open(path, passphrase string) (*Store, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA secure_delete=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initKey(passphrase); err != nil {
		db.Close()
		return nil, err
	}

	// The database may hold sealed tokens; keep it private to the user.
	_ = os.Chmod(path, 0600)

	return s, nil
}

// initKey loads or creates the salt and verifier and derives the AEAD.
func (s *Store) initKey(passphrase string) error {
	saltHex, err := s.meta("kdf_salt")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read salt: %w", err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		salt := make([]byte, SaltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		if s.aead, err = newAEAD(passphrase, salt); err != nil {
			return err
		}
		verifier, err := s.seal("verifier", []byte(verifierPlaintext))
		if err != nil {
			return err
		}
		_, err = s.db.Exec(
			`INSERT INTO meta (key, value) VALUES ('kdf_salt', ?), ('verifier', ?), ('schema_version', ?)`,
			hex.EncodeToString(salt), hex.EncodeToString(verifier), fmt.Sprint(SchemaVersion),
		)
		if err != nil {
			return fmt.Errorf("failed to write store metadata: %w", err)
		}
		return nil
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return fmt.Errorf("corrupt salt: %w", err)
	}
	if s.aead, err = newAEAD(passphrase, salt); err != nil {
		return err
	}

	verifierHex, err := s.meta("verifier")
	if err != nil {
		return fmt.Errorf("failed to read verifier: %w", err)
	}
	verifier, err := hex.DecodeString(verifierHex)
	if err != nil {
		return fmt.Errorf("corrupt verifier: %w", err)
	}
	plain, err := s.open("verifier", verifier)
	if err != nil || string(plain) != verifierPlaintext {
		return ErrWrongPassphrase
	}
	return nil
}

func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return aead, nil
}

func (s *Store) meta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	return value, err
}

// =============================================================================
// SEALING
// =============================================================================

// seal returns nonce || ciphertext. The field name is bound as associated
// data so sealed columns cannot be swapped.
func (s *Store) seal(field string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte("receipta:"+field)), nil
}

func (s *Store) open(field string, sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns {
		return nil, errors.New("sealed value too short")
	}
	plain, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], []byte("receipta:"+field))
	if err != nil {
		return nil, fmt.Errorf("failed to unseal %s: %w", field, err)
	}
	return plain, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Save replaces the stored credentials.
func (s *Store) Save(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	access, err := s.seal("access_token", []byte(c.AccessToken))
	if err != nil {
		return err
	}
	refresh, err := s.seal("refresh_token", []byte(c.RefreshToken))
	if err != nil {
		return err
	}

	savedAt := c.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	var expires int64
	if !c.ExpiresAt.IsZero() {
		expires = c.ExpiresAt.Unix()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, user_id, email, access_token, refresh_token, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		c.UserID, c.Email, access, refresh, expires, savedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Load returns the stored credentials, or ErrNotFound.
func (s *Store) Load(ctx context.Context) (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var (
		c               Credentials
		access, refresh []byte
		expires, saved  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, access_token, refresh_token, expires_at, saved_at
		FROM credentials WHERE id = 1`,
	).Scan(&c.UserID, &c.Email, &access, &refresh, &expires, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	plain, err := s.open("access_token", access)
	if err != nil {
		return nil, err
	}
	c.AccessToken = string(plain)
	if plain, err = s.open("refresh_token", refresh); err != nil {
		return nil, err
	}
	c.RefreshToken = string(plain)

	if expires > 0 {
		c.ExpiresAt = time.Unix(expires, 0)
	}
	c.SavedAt = time.Unix(saved, 0)
	return &c, nil
}

// Exists reports whether credentials are stored, without unsealing them.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query credentials: %w", err)
	}
	return n > 0, nil
}

// Clear removes the stored credentials. Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// KEY FILE
// =============================================================================

// LoadOrCreateKeyFile returns the passphrase stored at path, generating a
// random one (mode 0600) when the file does not exist yet.
func LoadOrCreateKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("key file %s is empty", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}

	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	key := hex.EncodeToString(raw)

	if err := util.AtomicWriteFileWithDir(path, []byte(key+"\n"), 0600, 0700); err != nil {
		return "", fmt.Errorf("failed to write key file: %w", err)
	}
	return key, nil
}
