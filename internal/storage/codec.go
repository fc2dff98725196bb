package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// LoadJSON reads key into dest. It returns ErrNotFound untouched so callers
// can tell a fresh user from a broken backend.
func LoadJSON(ctx context.Context, store BlobStore, key string, dest any) error {
	data, err := store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// SaveJSON encodes value and writes it under key.
func SaveJSON(ctx context.Context, store BlobStore, key string, value any, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return store.Save(ctx, key, data, ttl)
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
