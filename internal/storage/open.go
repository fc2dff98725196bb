package storage

import (
	"context"
	"fmt"
	"strings"

	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"
)

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg model.StorageConfig) (BlobStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Dir)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisURL, cfg.Prefix)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// OpenOrMemory opens the configured backend and falls back to an in-memory
// store when it is unavailable. The fallback is logged, never surfaced.
func OpenOrMemory(ctx context.Context, cfg model.StorageConfig) BlobStore {
	store, err := Open(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Backend).Msg("storage unavailable, continuing in memory")
		return NewMemoryStore()
	}
	return store
}
