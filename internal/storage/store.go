// Package storage persists the conversation list under a single key in a
// pluggable key-value backend.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lingochain/lingochain/internal/config"
)

var (
	ErrNotFound       = errors.New("key not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store is a minimal byte-oriented key-value store.
type Store interface {
	// Get returns ErrNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the backend selected by cfg.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "bolt":
		return NewBoltStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, "lingochain:")
	default:
		return nil, errors.Wrap(ErrUnknownBackend, cfg.Backend)
	}
}
