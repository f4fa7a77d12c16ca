// Package kvstore provides the durable key-value stores the list collection
// is written to.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// Backend names a store implementation.
type Backend string

const (
	// BackendFile stores one JSON file per key.
	BackendFile Backend = "file"
	// BackendSQLite stores keys in a SQLite table.
	BackendSQLite Backend = "sqlite"
	// BackendMemory keeps keys in process memory.
	BackendMemory Backend = "memory"
)

// ErrUnknownBackend indicates an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a string-keyed blob store.
type Store interface {
	// Get returns the value for key. A missing key reports ok=false and a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options configures Open.
type Options struct {
	Backend Backend
	// Path is a directory for the file backend and a database file for sqlite.
	Path   string
	Logger pslog.Logger
}

// ParseBackend normalizes a backend name.
func ParseBackend(raw string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(raw))) {
	case "", BackendFile:
		return BackendFile, nil
	case BackendSQLite, "sqlite3":
		return BackendSQLite, nil
	case BackendMemory, "mem":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, raw)
	}
}

// Open constructs the configured store.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend, err := ParseBackend(string(opts.Backend))
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	logger = logger.With("backend", backend)
	switch backend {
	case BackendSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "ahalaj.db")
		}
		return OpenSQLite(ctx, path, logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return NewFileStore(opts.Path, logger)
	}
}
