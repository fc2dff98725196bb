package storage

import (
	"context"
	"fmt"
	"time"

	"hotel_concierge/src/model"
)

// SessionManager holds short-term memory: the active booking session per
// conversation, expiring after ttl of inactivity.
type SessionManager struct {
	store BlobStore
	ttl   time.Duration
	now   func() time.Time
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithSessionClock sets the time source used for expiry. It must match the
// clock that stamps session.UpdatedAt.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionManager) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSessionManager creates a session manager over store.
func NewSessionManager(store BlobStore, ttl time.Duration, opts ...SessionOption) *SessionManager {
	s := &SessionManager{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSession returns the active booking, or nil when none is open.
func (s *SessionManager) GetSession(ctx context.Context, conversationID string) (*model.BookingSession, error) {
	var session model.BookingSession
	err := LoadJSON(ctx, s.store, BookingKey(conversationID), &session)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}

	// Backends without native TTLs keep stale sessions around.
	if s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl {
		if err := s.store.Delete(ctx, BookingKey(conversationID)); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &session, nil
}

// SaveSession stores session and refreshes its TTL.
func (s *SessionManager) SaveSession(ctx context.Context, conversationID string, session *model.BookingSession) error {
	if conversationID == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = s.now()
	}
	return SaveJSON(ctx, s.store, BookingKey(conversationID), session, s.ttl)
}

// DeleteSession closes the active booking.
func (s *SessionManager) DeleteSession(ctx context.Context, conversationID string) error {
	return s.store.Delete(ctx, BookingKey(conversationID))
}

// ValidateSession checks a session loaded from an untrusted source.
func ValidateSession(session *model.BookingSession) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.ID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if session.TotalSteps <= 0 || session.Step < 1 || session.Step > session.TotalSteps {
		return fmt.Errorf("session step %d outside 1..%d", session.Step, session.TotalSteps)
	}
	return nil
}
