// SPDX-License-Identifier: MIT

package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLite stores records as rows of a single table.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("checkpoint: sqlite store needs a path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, ioErr("mkdir", path, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ioErr("open", path, err)
	}
	// one connection keeps ":memory:" a single database and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS checkpoints (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, ioErr("create table", path, err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Put upserts key.
func (s *SQLite) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`, key, data)
	if err != nil {
		return ioErr("put", key, err)
	}

	return nil
}

// Get selects key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM checkpoints WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("get", key, err)
	}

	return data, nil
}

// List returns keys ordered by key.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM checkpoints ORDER BY key`)
	if err != nil {
		return nil, ioErr("list", s.path, err)
	}
	defer func() { _ = rows.Close() }()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, ioErr("scan", s.path, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list", s.path, err)
	}

	return keys, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error { return s.db.Close() }
