// Package store persists raw generation attempt bytes as an audit trail.
//
// Attempts are kept unconditionally, passing or not, keyed by artifact and
// attempt number, so any delivered candidate can be traced back to the
// alternatives that lost to it.
package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Config holds configuration for the attempt store.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is
	// true.
	Path string `yaml:"path"`

	// InMemory disables disk persistence. Useful for tests.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites forces synchronous writes for durability.
	SyncWrites bool `yaml:"sync_writes"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:       "data/attempts",
		SyncWrites: true,
	}
}

// Store is a badger-backed attempt archive.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the attempt store.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open attempt store: %w", err)
	}
	return &Store{db: db}, nil
}

// attemptKey builds the deterministic storage key for one attempt.
func attemptKey(artifact string, attempt int) []byte {
	return []byte(fmt.Sprintf("%s_%d", artifact, attempt))
}

// Put stores the raw bytes of one generation attempt.
func (s *Store) Put(ctx context.Context, artifact string, attempt int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(attemptKey(artifact, attempt), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store attempt %s_%d: %w", artifact, attempt, err)
	}
	return nil
}

// Get retrieves the raw bytes of a stored attempt.
func (s *Store) Get(ctx context.Context, artifact string, attempt int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(attemptKey(artifact, attempt))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read attempt %s_%d: %w", artifact, attempt, err)
	}
	return data, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
