// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package journal keeps a local SQLite log of every transaction scli
// submitted, so hashes survive after the terminal scrolls away.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	wallet     TEXT    NOT NULL,
	verb       TEXT    NOT NULL,
	hash       TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_wallet ON transactions (wallet);
`

// Entry is one submitted transaction.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Wallet    string
	Verb      string
	Hash      string
}

// Journal is an append-only transaction log.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends e. CreatedAt defaults to now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transactions (created_at, wallet, verb, hash) VALUES (?, ?, ?, ?)`,
		e.CreatedAt.UnixNano(), e.Wallet, e.Verb, e.Hash)
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", e.Hash, err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit of zero or
// less returns everything.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, created_at, wallet, verb, hash FROM transactions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ns int64
		)
		if err := rows.Scan(&e.ID, &ns, &e.Wallet, &e.Verb, &e.Hash); err != nil {
			return nil, fmt.Errorf("failed to read journal: %w", err)
		}
		e.CreatedAt = time.Unix(0, ns)
		out = append(out, e)
	}
	return out, rows.Err()
}
