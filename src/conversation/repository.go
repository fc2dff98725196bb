package conversation

import (
	"context"
	"fmt"
	"time"

	"hotel_concierge/internal/storage"
	"hotel_concierge/src/model"
)

// DefaultMessageLimit bounds one conversation's transcript.
const DefaultMessageLimit = 1000

type ConversationHistory struct {
	Messages []model.Message `json:"messages"`
}

type Repository interface {
	Load(ctx context.Context, conversationID string) (*ConversationHistory, error)
	Save(ctx context.Context, conversationID string, history *ConversationHistory) error
	AddMessage(ctx context.Context, conversationID string, message model.Message) error
	Delete(ctx context.Context, conversationID string) error
	GetContext(ctx context.Context, conversationID string, strategy ContextStrategy) (string, error)
}

// BlobRepository keeps each transcript as one blob, oldest messages dropped
// past the limit.
type BlobRepository struct {
	store storage.BlobStore
	ttl   time.Duration
	limit int
}

// NewBlobRepository stores transcripts in store. A zero ttl keeps them
// forever, a limit below one selects DefaultMessageLimit.
func NewBlobRepository(store storage.BlobStore, ttl time.Duration, limit int) *BlobRepository {
	if limit < 1 {
		limit = DefaultMessageLimit
	}
	return &BlobRepository{store: store, ttl: ttl, limit: limit}
}

func (r *BlobRepository) Load(ctx context.Context, conversationID string) (*ConversationHistory, error) {
	var history ConversationHistory
	err := storage.LoadJSON(ctx, r.store, storage.TranscriptKey(conversationID), &history)
	if storage.IsNotFound(err) {
		return &ConversationHistory{Messages: []model.Message{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if history.Messages == nil {
		history.Messages = []model.Message{}
	}
	return &history, nil
}

func (r *BlobRepository) Save(ctx context.Context, conversationID string, history *ConversationHistory) error {
	if over := len(history.Messages) - r.limit; over > 0 {
		history.Messages = history.Messages[over:]
	}
	if err := storage.SaveJSON(ctx, r.store, storage.TranscriptKey(conversationID), history, r.ttl); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

func (r *BlobRepository) AddMessage(ctx context.Context, conversationID string, message model.Message) error {
	history, err := r.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	history.Messages = append(history.Messages, message)
	return r.Save(ctx, conversationID, history)
}

func (r *BlobRepository) Delete(ctx context.Context, conversationID string) error {
	return r.store.Delete(ctx, storage.TranscriptKey(conversationID))
}

func (r *BlobRepository) GetContext(ctx context.Context, conversationID string, strategy ContextStrategy) (string, error) {
	history, err := r.Load(ctx, conversationID)
	if err != nil {
		return "", err
	}
	return strategy.BuildContext(SchemaMessages(history.Messages)), nil
}
