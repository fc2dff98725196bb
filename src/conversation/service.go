package conversation

import (
	"context"
	"time"

	"hotel_concierge/src/model"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SaveUserMessage appends the guest's utterance with its classification.
func (s *Service) SaveUserMessage(ctx context.Context, conversationID, text string, intent model.Intent) (model.Message, error) {
	msg := model.Message{
		ID:         uuid.NewString(),
		Role:       schema.User,
		Content:    text,
		Timestamp:  s.now(),
		Intent:     intent.Primary,
		Confidence: intent.Confidence,
		Language:   intent.Language,
	}
	return msg, s.repo.AddMessage(ctx, conversationID, msg)
}

// SaveResponse appends the assistant's reply.
func (s *Service) SaveResponse(ctx context.Context, conversationID, response string, lang model.Language) (model.Message, error) {
	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      schema.Assistant,
		Content:   response,
		Timestamp: s.now(),
		Language:  lang,
	}
	return msg, s.repo.AddMessage(ctx, conversationID, msg)
}

// GetHistory returns up to the last n messages, all when n <= 0.
func (s *Service) GetHistory(ctx context.Context, conversationID string, n int) ([]model.Message, error) {
	history, err := s.repo.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return trimTail(history.Messages, n), nil
	}
	return history.Messages, nil
}

// Transcript renders the recent conversation with strategy.
func (s *Service) Transcript(ctx context.Context, conversationID string, strategy ContextStrategy) (string, error) {
	return s.repo.GetContext(ctx, conversationID, strategy)
}

// Clear drops the conversation's transcript.
func (s *Service) Clear(ctx context.Context, conversationID string) error {
	return s.repo.Delete(ctx, conversationID)
}
