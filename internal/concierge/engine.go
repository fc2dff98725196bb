// Package concierge is the entry point of the conversational core: one
// Engine per conversation, created and cached by a Registry.
package concierge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/services"
	"hotel_concierge/src/composer"
	"hotel_concierge/src/conversation"
	"hotel_concierge/src/i18n"
	"hotel_concierge/src/learning"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"

	"github.com/rs/zerolog"
)

const maxPredictive = 5

// ErrEmptyMessage is returned for blank utterances.
var ErrEmptyMessage = errors.New("message cannot be empty")

// Result is everything one turn produced.
type Result struct {
	ConversationID string                `json:"conversation_id"`
	Reply          string                `json:"reply"`
	Intent         model.Intent          `json:"intent"`
	Actions        []model.AgentAction   `json:"actions"`
	ContextualInfo []string              `json:"contextual_info"`
	FollowUps      []string              `json:"follow_up_questions"`
	Booking        *model.BookingSession `json:"booking,omitempty"`
	Export         *model.Snapshot       `json:"export,omitempty"`
}

// Engine serves one conversation. Turns are processed one at a time.
type Engine struct {
	mu sync.Mutex

	id       string
	deps     *Deps
	memory   *learning.Store
	route    string
	language model.Language
	log      zerolog.Logger
}

func newEngine(ctx context.Context, id string, deps *Deps, memory *learning.Store) *Engine {
	e := &Engine{
		id:       id,
		deps:     deps,
		memory:   memory,
		route:    "/",
		language: i18n.Resolve(deps.Config.Language),
		log:      logger.Component("engine").With().Str("conversation_id", id).Logger(),
	}
	memory.BeginSession(ctx, id, e.route)
	return e
}

func (e *Engine) ID() string { return e.id }

func (e *Engine) UserID() string { return e.memory.UserID() }

func (e *Engine) Memory() *learning.Store { return e.memory }

// Respond runs one utterance through the pipeline. Failures inside the
// pipeline never escape: they become the localized technical difficulty
// reply.
func (e *Engine) Respond(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyMessage
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.respond(ctx, text), nil
}

func (e *Engine) respond(ctx context.Context, text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("turn panicked, replying with fallback")
			res = e.fallback()
		}
	}()

	turn := core.NewTurn(e.id, e.memory.UserID(), text, e.language, e.route, e.memory, e.deps.now())
	out, err := e.deps.Pipeline.Execute(ctx, turn)
	if err != nil {
		e.log.Error().Err(err).Msg("turn failed, replying with fallback")
		return e.fallback()
	}
	return Result{
		ConversationID: e.id,
		Reply:          out.Reply,
		Intent:         out.Intent,
		Actions:        out.Actions,
		ContextualInfo: out.ContextualInfo,
		FollowUps:      out.FollowUps,
		Booking:        out.Session,
		Export:         out.Export,
	}
}

func (e *Engine) fallback() Result {
	return Result{
		ConversationID: e.id,
		Reply:          e.deps.Composer.Fallback(e.language),
		Intent: model.Intent{
			Primary:   model.IntentGeneral,
			Entities:  model.Entities{},
			Sentiment: model.SentimentNeutral,
			Urgency:   model.UrgencyLow,
			Language:  e.language,
		},
		Actions:        []model.AgentAction{},
		ContextualInfo: []string{},
		FollowUps:      []string{},
	}
}

// ProcessMessage returns only the reply text. A blank message gets the
// general help reply.
func (e *Engine) ProcessMessage(ctx context.Context, text string) string {
	res, err := e.Respond(ctx, text)
	if err != nil {
		return e.deps.Composer.Compose(ctx, composer.Request{
			Intent:   model.Intent{Primary: model.IntentGeneral},
			Language: e.Language(),
		})
	}
	return res.Reply
}

// AnalyzeIntent classifies text without side effects.
func (e *Engine) AnalyzeIntent(text string) model.Intent {
	return e.deps.Matcher.Classify(text, e.Language())
}

// GetSuggestions autocompletes prefix from the guest's learned patterns.
func (e *Engine) GetSuggestions(prefix string) []string {
	return e.memory.Suggestions(prefix, e.Language())
}

// PredictiveSuggestions lists confident learned patterns, then the canned
// prompts of the current page.
func (e *Engine) PredictiveSuggestions() []string {
	return predictive(e.memory, e.deps.Hotel, e.Route())
}

func predictive(memory *learning.Store, hotel *services.HotelService, route string) []string {
	out := make([]string, 0, maxPredictive)
	seen := make(map[string]struct{})
	candidates := append(memory.TopPatterns(0.5, maxPredictive), hotel.RouteSuggestions(route)...)
	for _, c := range candidates {
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == maxPredictive {
			break
		}
	}
	return out
}

// SetRoute records the page the guest is viewing.
func (e *Engine) SetRoute(route string) {
	if route == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.route = route
}

func (e *Engine) Route() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.route
}

// SetLanguage switches the reply language. Unsupported tags resolve to the
// closest supported language, English at worst.
func (e *Engine) SetLanguage(tag string) model.Language {
	lang := i18n.Resolve(tag)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.language = lang
	return lang
}

func (e *Engine) Language() model.Language {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// PredictIntent guesses the intent of a partial utterance from the guest's
// learned patterns in the conversation language.
func (e *Engine) PredictIntent(partial string) (model.LearningPattern, bool) {
	return e.memory.PredictIntent(partial, e.Language())
}

// SetCommunicationStyle changes how greetings address the guest.
func (e *Engine) SetCommunicationStyle(ctx context.Context, style model.CommunicationStyle) {
	e.memory.SetCommunicationStyle(ctx, style)
}

// History returns up to the last n transcript messages, all when n <= 0.
func (e *Engine) History(ctx context.Context, n int) ([]model.Message, error) {
	return e.deps.Conversation.GetHistory(ctx, e.id, n)
}

// Transcript renders the last n messages as text.
func (e *Engine) Transcript(ctx context.Context, n int) (string, error) {
	return e.deps.Conversation.Transcript(ctx, e.id, conversation.NewTranscriptStrategy(n))
}

// ActiveBooking returns the open booking session, nil when there is none.
func (e *Engine) ActiveBooking(ctx context.Context) (*model.BookingSession, error) {
	return e.deps.Sessions.GetSession(ctx, e.id)
}

func (e *Engine) Preferences() model.UserPreferences {
	return e.memory.Preferences()
}

func (e *Engine) ExportSnapshot() model.Snapshot {
	return e.memory.ExportSnapshot()
}

func (e *Engine) ImportSnapshot(ctx context.Context, snap model.Snapshot) {
	e.memory.ImportSnapshot(ctx, snap)
}

// Reset forgets the guest and this conversation's booking and transcript.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memory.Reset(ctx)
	if err := e.deps.Sessions.DeleteSession(ctx, e.id); err != nil {
		return fmt.Errorf("failed to drop booking session: %w", err)
	}
	if err := e.deps.Conversation.Clear(ctx, e.id); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	return nil
}

// Close stamps the end of the conversation in the guest's session history.
func (e *Engine) Close(ctx context.Context) {
	e.memory.EndSession(ctx, e.id)
}
