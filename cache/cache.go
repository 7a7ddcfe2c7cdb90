// Package cache persists the most recent message window per group so a
// reopened thread renders instantly before its live subscription answers.
//
// The cache is advisory only: it is never the write target of a user action,
// and every error it returns is safe to discard at the call site. Absence
// degrades to rendering nothing until live data arrives.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/klipach/groupchat/contract"
)

// WindowSize bounds how many messages are kept per group, newest first.
const WindowSize = 100

// ErrNoEntry is returned by Messages when no window is cached for the group.
var ErrNoEntry = errors.New("no cache entry")

type Cache struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS thread_cache (
	group_id   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

// Open opens (or creates) the cache database at path. Use ":memory:" for an
// ephemeral cache.
func Open(path string) (*Cache, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening database: %w", err)
	}
	// allow reads while a snapshot write-back is in flight
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Messages returns the cached window for groupID, newest first, or ErrNoEntry.
func (c *Cache) Messages(ctx context.Context, groupID string) ([]contract.Message, error) {
	var payload string
	err := c.db.GetContext(ctx, &payload,
		`SELECT payload FROM thread_cache WHERE group_id = ?`, groupID)
	if err == sql.ErrNoRows {
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, fmt.Errorf("cache: reading window for %s: %w", groupID, err)
	}
	var msgs []contract.Message
	if err := json.Unmarshal([]byte(payload), &msgs); err != nil {
		return nil, fmt.Errorf("cache: decoding window for %s: %w", groupID, err)
	}
	return msgs, nil
}

// PutMessages stores msgs as the window for groupID, truncated to WindowSize.
// msgs must already be newest first; the slice is stored as delivered.
// Concurrent writers to the same group id race benignly: last write wins.
func (c *Cache) PutMessages(ctx context.Context, groupID string, msgs []contract.Message) error {
	if len(msgs) > WindowSize {
		msgs = msgs[:WindowSize]
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("cache: encoding window for %s: %w", groupID, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO thread_cache (group_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(group_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		groupID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: writing window for %s: %w", groupID, err)
	}
	return nil
}
