// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists session state between runs.
//
// The shape is a plain key-value string store (SQLite-backed): each concern
// serializes itself to one JSON string under a well-known key. Writes are
// synchronous and best-effort; a failed write is logged and otherwise
// ignored, it never interrupts the chat.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/roster"
)

// Well-known keys.
const (
	KeyUser          = "user"
	KeyRoster        = "roster"
	KeyConversations = "conversations"
	KeyDmChannels    = "dm_channels"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the key-value persistence layer.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store at dir/state.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes the value for key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// =============================================================================
// TYPED SNAPSHOTS
// =============================================================================

// SaveUser persists the acting user's chosen handle.
func (s *Store) SaveUser(handle string) error {
	return s.Set(KeyUser, handle)
}

// LoadUser returns the persisted handle, empty if none.
func (s *Store) LoadUser() (string, error) {
	v, ok, err := s.Get(KeyUser)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// SaveRoster persists the full roster, built-in and custom.
func (s *Store) SaveRoster(profiles []roster.CharacterProfile) error {
	return s.setJSON(KeyRoster, profiles)
}

// LoadRoster returns the persisted roster, nil if none.
func (s *Store) LoadRoster() ([]roster.CharacterProfile, error) {
	var profiles []roster.CharacterProfile
	ok, err := s.getJSON(KeyRoster, &profiles)
	if err != nil || !ok {
		return nil, err
	}
	return profiles, nil
}

// SaveConversations persists every chat log keyed by chat id.
func (s *Store) SaveConversations(logs map[string][]*model.Message) error {
	return s.setJSON(KeyConversations, logs)
}

// LoadConversations returns the persisted logs, nil if none.
func (s *Store) LoadConversations() (map[string][]*model.Message, error) {
	var logs map[string][]*model.Message
	ok, err := s.getJSON(KeyConversations, &logs)
	if err != nil || !ok {
		return nil, err
	}
	return logs, nil
}

// SaveDmChannels persists the open DM channel list.
func (s *Store) SaveDmChannels(channels []model.DmChannel) error {
	return s.setJSON(KeyDmChannels, channels)
}

// LoadDmChannels returns the persisted channels, nil if none.
func (s *Store) LoadDmChannels() ([]model.DmChannel, error) {
	var channels []model.DmChannel
	ok, err := s.getJSON(KeyDmChannels, &channels)
	if err != nil || !ok {
		return nil, err
	}
	return channels, nil
}

// setJSON marshals v and stores it under key.
func (s *Store) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, string(data))
}

// getJSON loads key into v, reporting presence.
func (s *Store) getJSON(key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("corrupt value for %q: %w", key, err)
	}
	return true, nil
}
