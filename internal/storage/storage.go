package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Kinds of backend accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

var (
	// ErrUnknownBackend is returned by Open for an unsupported kind.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrClosed is returned when a backend is used after Close.
	ErrClosed = errors.New("storage closed")
)

// Backend is a small persistent key/value store.
//
// Set writes every pair in one atomic, durable step. Delete is durable on
// return and ignores keys that are not present.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// DefaultDir returns ~/.authfront.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".authfront"), nil
}

// Open returns the backend of the given kind rooted at dir.
// An empty kind selects the file backend, an empty dir selects DefaultDir.
func Open(kind, dir string) (Backend, error) {
	if kind == KindMemory {
		return NewMemoryBackend(), nil
	}

	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	switch kind {
	case "", KindFile:
		return NewFileBackend(dir)
	case KindSQLite:
		return NewSQLiteBackend(filepath.Join(dir, "session.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
