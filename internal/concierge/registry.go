package concierge

import (
	"context"
	"sort"
	"sync"
	"time"

	"hotel_concierge/src/learning"
	"hotel_concierge/src/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AnonymousUser owns conversations that arrive without a user id.
const AnonymousUser = "anonymous"

const (
	DefaultMaxConversations = 1000
	DefaultConversationIdle = 30 * time.Minute
)

type registryEntry struct {
	engine   *Engine
	lastUsed time.Time
}

// Registry holds one Engine per conversation and one learning store per
// user, all over the same Deps. Conversations idle for longer than the
// configured idle time are ended, and past the conversation cap the least
// recently used one is ended first.
type Registry struct {
	mu      sync.Mutex
	deps    *Deps
	engines map[string]*registryEntry
	stores  map[string]*learning.Store
	max     int
	idle    time.Duration
	log     zerolog.Logger
}

func NewRegistry(deps *Deps) *Registry {
	r := &Registry{
		deps:    deps,
		engines: make(map[string]*registryEntry),
		stores:  make(map[string]*learning.Store),
		max:     deps.Config.MaxConversations,
		idle:    deps.Config.ConversationIdle,
		log:     logger.Component("registry"),
	}
	if r.max <= 0 {
		r.max = DefaultMaxConversations
	}
	if r.idle <= 0 {
		r.idle = DefaultConversationIdle
	}
	return r
}

func (r *Registry) Deps() *Deps { return r.deps }

// Engine returns the conversation's engine, creating it for userID when
// new. An empty conversation id starts a fresh conversation.
func (r *Registry) Engine(ctx context.Context, conversationID, userID string) *Engine {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	now := r.deps.now()

	r.mu.Lock()
	if entry, ok := r.engines[conversationID]; ok {
		entry.lastUsed = now
		r.mu.Unlock()
		return entry.engine
	}
	evicted := r.evictLocked(now, userID)
	e := newEngine(ctx, conversationID, r.deps, r.memoryLocked(ctx, userID))
	r.engines[conversationID] = &registryEntry{engine: e, lastUsed: now}
	r.mu.Unlock()

	r.log.Debug().Str("conversation_id", conversationID).Str("user_id", e.UserID()).Msg("conversation started")
	r.closeAll(ctx, evicted)
	return e
}

// evictLocked removes idle conversations, then the least recently used ones
// until a new conversation fits under the cap. Learning stores no longer
// referenced by a conversation, other than keep's, are dropped too.
func (r *Registry) evictLocked(now time.Time, keep string) []*Engine {
	var evicted []*Engine
	for id, entry := range r.engines {
		if now.Sub(entry.lastUsed) > r.idle {
			evicted = append(evicted, entry.engine)
			delete(r.engines, id)
		}
	}

	if over := len(r.engines) - r.max + 1; over > 0 {
		ids := make([]string, 0, len(r.engines))
		for id := range r.engines {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return r.engines[ids[i]].lastUsed.Before(r.engines[ids[j]].lastUsed)
		})
		for _, id := range ids[:over] {
			evicted = append(evicted, r.engines[id].engine)
			delete(r.engines, id)
		}
	}

	if len(evicted) == 0 {
		return nil
	}
	if keep == "" {
		keep = AnonymousUser
	}
	inUse := map[string]struct{}{keep: {}}
	for _, entry := range r.engines {
		inUse[entry.engine.UserID()] = struct{}{}
	}
	for userID := range r.stores {
		if _, ok := inUse[userID]; !ok {
			delete(r.stores, userID)
		}
	}
	r.log.Debug().Int("evicted", len(evicted)).Int("active", len(r.engines)).Msg("conversations evicted")
	return evicted
}

func (r *Registry) closeAll(ctx context.Context, engines []*Engine) {
	for _, e := range engines {
		e.Close(ctx)
	}
}

// Lookup returns an existing engine only.
func (r *Registry) Lookup(conversationID string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.engines[conversationID]
	if !ok {
		return nil, false
	}
	return entry.engine, true
}

// Len returns the number of open conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Memory returns the learning store of userID.
func (r *Registry) Memory(ctx context.Context, userID string) *learning.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memoryLocked(ctx, userID)
}

func (r *Registry) memoryLocked(ctx context.Context, userID string) *learning.Store {
	if userID == "" {
		userID = AnonymousUser
	}
	if s, ok := r.stores[userID]; ok {
		return s
	}
	s := learning.New(ctx, r.deps.Blobs, userID,
		learning.WithCapacity(r.deps.Config.PatternCapacity),
		learning.WithConversationLimit(r.deps.Config.ConversationLimit),
		learning.WithSessionLimit(r.deps.Config.SessionLimit),
		learning.WithClock(r.deps.now),
	)
	r.stores[userID] = s
	return s
}

// Predictive returns the page suggestions for a user outside any
// conversation.
func (r *Registry) Predictive(ctx context.Context, userID, route string) []string {
	return predictive(r.Memory(ctx, userID), r.deps.Hotel, route)
}

// End closes a conversation and forgets its engine.
func (r *Registry) End(ctx context.Context, conversationID string) {
	r.mu.Lock()
	entry, ok := r.engines[conversationID]
	delete(r.engines, conversationID)
	r.mu.Unlock()
	if ok {
		entry.engine.Close(ctx)
	}
}

// Close ends every conversation and closes the blob store.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	engines := make([]*Engine, 0, len(r.engines))
	for _, entry := range r.engines {
		engines = append(engines, entry.engine)
	}
	r.engines = make(map[string]*registryEntry)
	r.mu.Unlock()

	r.closeAll(ctx, engines)
	return r.deps.Blobs.Close()
}
