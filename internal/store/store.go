// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides SQLite-backed persistence for Soul Sense.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUserExists   = errors.New("username already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrNotFound     = errors.New("record not found")
)

// =============================================================================
// MODELS
// =============================================================================

// User is a local Soul Sense account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	TOTPSecret   string
	CreatedAt    time.Time
	LastLogin    time.Time // zero when the user has never logged in
}

// MoodEntry is a single mood check-in.
type MoodEntry struct {
	ID        string
	UserID    int64
	Score     int
	Note      string
	Tags      []string
	CreatedAt time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. Use ":memory:"
// for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer: SQLite serializes writes anyway, and a single
	// connection avoids table-lock errors under concurrent use.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		totp_secret   TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		last_login    TEXT
	);

	CREATE TABLE IF NOT EXISTS mood_entries (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		score      INTEGER NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mood_user_created
		ON mood_entries(user_id, created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts a new user and returns its ID.
func (s *Store) CreateUser(username, passwordHash string) (int64, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM users WHERE username = ?`, username).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if exists > 0 {
		return 0, ErrUserExists
	}

	res, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return res.LastInsertId()
}

// GetUser fetches a user by username.
func (s *Store) GetUser(username string) (*User, error) {
	row := s.db.QueryRow(
		`SELECT id, username, password_hash, totp_secret, created_at, last_login
		 FROM users WHERE username = ?`, username)

	var u User
	var createdAt string
	var lastLogin sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TOTPSecret, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if lastLogin.Valid && lastLogin.String != "" {
		u.LastLogin, _ = time.Parse(time.RFC3339, lastLogin.String)
	}
	return &u, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (s *Store) UpdateLastLogin(username string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE users SET last_login = ? WHERE username = ?`,
		at.UTC().Format(time.RFC3339), username)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetTOTPSecret stores the user's TOTP enrollment secret.
func (s *Store) SetTOTPSecret(username, secret string) error {
	res, err := s.db.Exec(
		`UPDATE users SET totp_secret = ? WHERE username = ?`, secret, username)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// =============================================================================
// MOOD ENTRIES
// =============================================================================

// InsertMoodEntry persists a mood check-in.
func (s *Store) InsertMoodEntry(e *MoodEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO mood_entries (id, user_id, score, note, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Score, e.Note, strings.Join(e.Tags, ","),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert mood entry: %w", err)
	}
	return nil
}

// ListMoodEntries returns the user's entries created at or after since,
// newest first.
func (s *Store) ListMoodEntries(userID int64, since time.Time) ([]MoodEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, score, note, tags, created_at
		 FROM mood_entries
		 WHERE user_id = ? AND created_at >= ?
		 ORDER BY created_at DESC`,
		userID, since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []MoodEntry
	for rows.Next() {
		var e MoodEntry
		var tags, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Score, &e.Note, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		if tags != "" {
			e.Tags = strings.Split(tags, ",")
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteMoodEntry removes an entry owned by the given user.
func (s *Store) DeleteMoodEntry(userID int64, id string) error {
	res, err := s.db.Exec(
		`DELETE FROM mood_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete mood entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
