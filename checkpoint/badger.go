// SPDX-License-Identifier: MIT

package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores records in a BadgerDB key space.
type Badger struct {
	db *badger.DB
}

// BadgerConfig configures OpenBadger.
type BadgerConfig struct {
	// Path is the database directory; ignored when InMemory is set.
	Path string
	// InMemory keeps the database in memory, for tests.
	InMemory bool
	// SyncWrites fsyncs each write.
	SyncWrites bool
}

// OpenBadger opens (or creates) a BadgerDB store.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("checkpoint: badger store needs a directory")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, ioErr("mkdir", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, ioErr("open", cfg.Path, err)
	}

	return &Badger{db: db}, nil
}

// Put writes data in its own transaction.
func (b *Badger) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return ioErr("put", key, err)
	}

	return nil
}

// Get reads key.
func (b *Badger) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)

		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("get", key, err)
	}

	return out, nil
}

// List iterates keys in Badger's (lexical) order.
func (b *Badger) List(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}

		return nil
	})
	if err != nil {
		return nil, ioErr("list", "", err)
	}

	return keys, nil
}

// Close closes the database.
func (b *Badger) Close() error { return b.db.Close() }
