// Package storage provides the key/value blob backends that hold guest
// memory, conversation logs and active booking sessions.
//
// Every logical store is one JSON blob per key, read in full and rewritten
// in full on every mutation:
//
//	profile:{user_id}       // preferences, learning patterns, behavior
//	memory:{user_id}        // conversation and session history
//	booking:{conversation}  // active BookingSession, with TTL
//	transcript:{conversation}
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when the key is absent or expired.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a flat key/value store of opaque blobs. A zero ttl keeps the
// blob until it is deleted.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key builders for the logical stores.
func ProfileKey(userID string) string            { return "profile:" + userID }
func MemoryKey(userID string) string             { return "memory:" + userID }
func BookingKey(conversationID string) string    { return "booking:" + conversationID }
func TranscriptKey(conversationID string) string { return "transcript:" + conversationID }
