// Package learning is the guest preference and memory store: learned
// utterance patterns, behavior counters, preferences and the conversation
// log, persisted write-through as two JSON blobs per user.
package learning

import (
	"context"
	"sync"
	"time"

	"hotel_concierge/internal/storage"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"

	"github.com/rs/zerolog"
)

const (
	DefaultCapacity          = 500
	DefaultConversationLimit = 1000
	DefaultSessionLimit      = 1000
)

// profile is the profile:{user} blob.
type profile struct {
	Preferences model.UserPreferences             `json:"preferences"`
	Patterns    map[string]*model.LearningPattern `json:"patterns"`
	Behavior    model.BehaviorStats               `json:"behavior"`
	LastSaved   time.Time                         `json:"lastSaved"`
}

// memoryLog is the memory:{user} blob.
type memoryLog struct {
	UserID                string                    `json:"userId"`
	Conversations         []model.ConversationEntry `json:"conversations"`
	SessionHistory        []model.SessionEntry      `json:"sessionHistory"`
	TotalInteractions     int                       `json:"totalInteractions"`
	ImportedConversations int                       `json:"importedConversations"`
	LastActive            time.Time                 `json:"lastActive"`
	LastSaved             time.Time                 `json:"lastSaved"`
}

// Store is safe for concurrent use. Writers to the same user from separate
// processes follow last-writer-wins.
type Store struct {
	mu sync.Mutex

	userID   string
	blobs    storage.BlobStore
	degraded bool

	capacity          int
	conversationLimit int
	sessionLimit      int
	completions       completionTable
	now               func() time.Time
	log               zerolog.Logger

	profile profile
	memory  memoryLog
}

type Option func(*Store)

// WithCapacity bounds the pattern table.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithSessionLimit bounds the session history.
func WithSessionLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.sessionLimit = n
		}
	}
}

// WithConversationLimit bounds the conversation log.
func WithConversationLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.conversationLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New loads the user's blobs from blobs. A nil store or a failing load
// leaves the store in memory-only mode.
func New(ctx context.Context, blobs storage.BlobStore, userID string, opts ...Option) *Store {
	s := &Store{
		userID:            userID,
		blobs:             blobs,
		capacity:          DefaultCapacity,
		conversationLimit: DefaultConversationLimit,
		sessionLimit:      DefaultSessionLimit,
		completions:       defaultCompletions(),
		now:               time.Now,
		log:               logger.Component("learning"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.profile = freshProfile()
	s.memory = freshMemory(userID, s.now())

	if blobs == nil {
		s.degraded = true
		return s
	}
	s.load(ctx)
	return s
}

func freshProfile() profile {
	return profile{
		Preferences: model.DefaultPreferences(),
		Patterns:    make(map[string]*model.LearningPattern),
		Behavior: model.BehaviorStats{
			CommonIntents:      make(map[string]int),
			PreferredTimeOfDay: make(map[string]int),
			LanguagePreference: model.LanguageEnglish,
		},
	}
}

func freshMemory(userID string, now time.Time) memoryLog {
	return memoryLog{
		UserID:         userID,
		Conversations:  []model.ConversationEntry{},
		SessionHistory: []model.SessionEntry{},
		LastActive:     now,
	}
}

func (s *Store) load(ctx context.Context) {
	var p profile
	switch err := storage.LoadJSON(ctx, s.blobs, storage.ProfileKey(s.userID), &p); {
	case err == nil:
		s.profile = fillProfile(p)
	case !storage.IsNotFound(err):
		s.degrade(err, "load profile")
		return
	}

	var m memoryLog
	switch err := storage.LoadJSON(ctx, s.blobs, storage.MemoryKey(s.userID), &m); {
	case err == nil:
		m.UserID = s.userID
		if m.Conversations == nil {
			m.Conversations = []model.ConversationEntry{}
		}
		if m.SessionHistory == nil {
			m.SessionHistory = []model.SessionEntry{}
		}
		s.memory = m
	case !storage.IsNotFound(err):
		s.degrade(err, "load memory")
	}
}

// fillProfile repairs nil collections left by older or hand-edited blobs.
func fillProfile(p profile) profile {
	fresh := freshProfile()
	if p.Patterns == nil {
		p.Patterns = fresh.Patterns
	}
	if p.Behavior.CommonIntents == nil {
		p.Behavior.CommonIntents = fresh.Behavior.CommonIntents
	}
	if p.Behavior.PreferredTimeOfDay == nil {
		p.Behavior.PreferredTimeOfDay = fresh.Behavior.PreferredTimeOfDay
	}
	if p.Behavior.LanguagePreference == "" {
		p.Behavior.LanguagePreference = model.LanguageEnglish
	}
	p.Preferences = fillPreferences(p.Preferences)
	return p
}

func fillPreferences(p model.UserPreferences) model.UserPreferences {
	if p.Language == "" {
		p.Language = model.LanguageEnglish
	}
	if p.CommunicationStyle == "" {
		p.CommunicationStyle = model.StyleFriendly
	}
	if p.RoomPreferences.Amenities == nil {
		p.RoomPreferences.Amenities = []string{}
	}
	if p.DiningPreferences.Cuisine == nil {
		p.DiningPreferences.Cuisine = []string{}
	}
	if p.DiningPreferences.Dietary == nil {
		p.DiningPreferences.Dietary = []string{}
	}
	if p.SpaPreferences.TreatmentTypes == nil {
		p.SpaPreferences.TreatmentTypes = []string{}
	}
	if p.FrequentRequests == nil {
		p.FrequentRequests = []string{}
	}
	if p.BookingHistory == nil {
		p.BookingHistory = []model.BookingRecord{}
	}
	return p
}

// persist rewrites both blobs. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if s.degraded {
		return
	}
	now := s.now()
	s.profile.LastSaved = now
	s.memory.LastSaved = now

	if err := storage.SaveJSON(ctx, s.blobs, storage.ProfileKey(s.userID), s.profile, 0); err != nil {
		s.degrade(err, "save profile")
		return
	}
	if err := storage.SaveJSON(ctx, s.blobs, storage.MemoryKey(s.userID), s.memory, 0); err != nil {
		s.degrade(err, "save memory")
	}
}

func (s *Store) degrade(err error, op string) {
	s.degraded = true
	s.log.Warn().Err(err).Str("user_id", s.userID).Str("op", op).
		Msg("memory storage unavailable, continuing in memory only")
}

// UserID returns the stable user identifier.
func (s *Store) UserID() string { return s.userID }

// Degraded reports whether the store stopped persisting.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Preferences returns a copy of the current preferences.
func (s *Store) Preferences() model.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Preferences.Clone()
}

// Conversations returns up to the last n conversation entries, all when n <= 0.
func (s *Store) Conversations(n int) []model.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.memory.Conversations
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return append([]model.ConversationEntry(nil), entries...)
}

// TotalInteractions returns the number of recorded interactions.
func (s *Store) TotalInteractions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.TotalInteractions
}

// Reset clears everything learned from conversations but keeps the user id.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = freshProfile()
	s.memory = freshMemory(s.userID, s.now())
	s.persist(ctx)
	s.log.Info().Str("user_id", s.userID).Msg("memory reset")
}
