package concierge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testConfig() model.EngineConfig {
	return model.EngineConfig{
		Language:          "en",
		GreetingRate:      0.3,
		SentenceLimit:     2,
		PatternCapacity:   500,
		ConversationLimit: 1000,
		MessageLimit:      1000,
		BookingTTL:        30 * time.Minute,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	deps, err := NewDeps(context.Background(), testConfig(), storage.NewMemoryStore(),
		WithRandom(func() float64 { return 0.99 }),
		WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	return NewRegistry(deps)
}

func respond(t *testing.T, e *Engine, text string) Result {
	t.Helper()
	res, err := e.Respond(context.Background(), text)
	require.NoError(t, err)
	return res
}

func TestRespondStartsBookingWithSeededGuests(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	res := respond(t, e, "I want to book a room for 2 guests")

	assert.Equal(t, model.IntentBookRoom, res.Intent.Primary)
	assert.InDelta(t, 0.9, res.Intent.Confidence, 1e-9)
	assert.Equal(t, 2, res.Intent.Entities[model.EntityGuests])
	assert.Equal(t, "When would you like to check in? Please share the date, for example 15/03/2025.", res.Reply)
	require.NotNil(t, res.Booking)
	assert.Equal(t, 1, res.Booking.Step)
}

func TestRespondWalksBookingToSummaryAndConfirmation(t *testing.T) {
	ctx := context.Background()
	e := newTestRegistry(t).Engine(ctx, "conv-1", "user-1")

	respond(t, e, "I'd like to book a room")
	assert.Contains(t, respond(t, e, "15/03/2025").Reply, "checking out")
	assert.Contains(t, respond(t, e, "18/03/2025").Reply, "How many guests")
	assert.Contains(t, respond(t, e, "2 guests").Reply, "room type")

	summary := respond(t, e, "deluxe").Reply
	for _, want := range []string{"15/03/2025", "18/03/2025", "2", "deluxe"} {
		assert.Contains(t, summary, want)
	}
	active, err := e.ActiveBooking(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, model.StatusConfirming, active.Status)

	confirmed := respond(t, e, "yes please")
	assert.Contains(t, confirmed.Reply, "Your reservation is confirmed.")
	assert.Nil(t, confirmed.Booking)

	active, err = e.ActiveBooking(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.True(t, e.Memory().HasRoomBooking())
}

func TestRespondRepromptsMissingField(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	first := respond(t, e, "book a room")
	assert.Equal(t, "I'd be happy to help you book a room! When would you like to check in?", first.Reply)

	again := respond(t, e, "hmm, not sure yet")
	assert.Equal(t, "When would you like to check in? Please share the date, for example 15/03/2025.", again.Reply)
	assert.Equal(t, again.Reply, respond(t, e, "let me think").Reply)
	require.NotNil(t, again.Booking)
	assert.Equal(t, 1, again.Booking.Step)
}

func TestBookingExpiryFollowsInjectedClock(t *testing.T) {
	ctx := context.Background()
	now := time.Now().Add(-time.Hour)
	deps, err := NewDeps(ctx, testConfig(), storage.NewMemoryStore(),
		WithRandom(func() float64 { return 0.99 }),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	e := NewRegistry(deps).Engine(ctx, "conv-1", "user-1")

	respond(t, e, "book a room")
	res := respond(t, e, "15/03/2025")
	require.NotNil(t, res.Booking)
	assert.Equal(t, 2, res.Booking.Step)
	assert.Contains(t, res.Reply, "checking out")

	now = now.Add(31 * time.Minute)
	active, err := e.ActiveBooking(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestRespondCancelsBooking(t *testing.T) {
	ctx := context.Background()
	e := newTestRegistry(t).Engine(ctx, "conv-1", "user-1")

	respond(t, e, "book a room")
	res := respond(t, e, "cancel")

	assert.Contains(t, res.Reply, "cancelled")
	active, err := e.ActiveBooking(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.False(t, e.Memory().HasRoomBooking())
}

func TestRespondRejectsEmptyMessage(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	_, err := e.Respond(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Contains(t, e.ProcessMessage(context.Background(), ""), "I'm Huda")
}

func TestMemoryCommands(t *testing.T) {
	ctx := context.Background()
	e := newTestRegistry(t).Engine(ctx, "conv-1", "user-1")

	respond(t, e, "Tell me about the spa")
	respond(t, e, "What time does the restaurant open?")
	before := e.Memory().TotalInteractions()

	remember := respond(t, e, "What do you remember about me?")
	assert.Equal(t, model.IntentMemoryCommand, remember.Intent.Primary)
	assert.Contains(t, remember.Reply, "I remember 2 interactions with you.")
	assert.Equal(t, before, e.Memory().TotalInteractions())

	export := respond(t, e, "export memory")
	require.NotNil(t, export.Export)
	assert.Equal(t, "user-1", export.Export.UserID)

	history, err := e.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 8)

	reset := respond(t, e, "reset memory")
	assert.Equal(t, "I've reset my memory. We're starting fresh!", reset.Reply)
	assert.Zero(t, e.Memory().TotalInteractions())
	prefs := e.Preferences()
	assert.Empty(t, prefs.Name)
	assert.Empty(t, prefs.FrequentRequests)
	assert.Empty(t, prefs.BookingHistory)

	history, err = e.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRespondLearnsFromTurns(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	respond(t, e, "Book a deluxe room")
	respond(t, e, "cancel")

	prefs := e.Preferences()
	assert.Equal(t, "deluxe", prefs.RoomPreferences.Type)
	assert.Contains(t, prefs.FrequentRequests, string(model.IntentBookRoom))
	assert.Contains(t, e.GetSuggestions("book"), "book a deluxe room")
}

func TestSetLanguage(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	assert.Equal(t, model.LanguageArabic, e.SetLanguage("ar-SA"))
	res := respond(t, e, "أبحث عن مطعم")
	assert.Equal(t, model.IntentDining, res.Intent.Primary)
	assert.Contains(t, res.Reply, "سأكون سعيدة")

	assert.Equal(t, model.LanguageEnglish, e.SetLanguage("xx"))
}

func TestPredictiveSuggestionsUseRoute(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")
	deps := e.deps

	e.SetRoute("/rooms")
	got := e.PredictiveSuggestions()
	assert.Equal(t, deps.Hotel.RouteSuggestions("/rooms"), got)
	assert.LessOrEqual(t, len(got), maxPredictive)
}

func TestCommunicationStyleSelectsGreeting(t *testing.T) {
	ctx := context.Background()
	deps, err := NewDeps(ctx, testConfig(), storage.NewMemoryStore(),
		WithRandom(func() float64 { return 0 }),
		WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	e := NewRegistry(deps).Engine(ctx, "conv-1", "user-1")

	respond(t, e, "Hi, my name is Sara, tell me about the spa")
	require.Equal(t, "Sara", e.Preferences().Name)

	e.SetCommunicationStyle(ctx, model.StyleProfessional)
	assert.Contains(t, respond(t, e, "Tell me about the spa").Reply, "Good day, Sara.")

	e.SetCommunicationStyle(ctx, model.StyleCasual)
	assert.Contains(t, respond(t, e, "Tell me about the spa").Reply, "Hey Sara!")
}

func TestPredictIntentUsesConversationLanguage(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	respond(t, e, "Tell me about the spa")
	p, ok := e.PredictIntent("tell me")
	require.True(t, ok)
	assert.Equal(t, model.IntentSpa, p.Intent)
	assert.Equal(t, "tell me about the spa", p.Pattern)

	e.SetLanguage("ar")
	_, ok = e.PredictIntent("tell me")
	assert.False(t, ok)
}

func TestAnalyzeIntentHasNoSideEffects(t *testing.T) {
	e := newTestRegistry(t).Engine(context.Background(), "conv-1", "user-1")

	intent := e.AnalyzeIntent("I have a complaint, the noise is terrible")
	assert.Equal(t, model.IntentComplaint, intent.Primary)
	assert.Zero(t, e.Memory().TotalInteractions())
}

type panicNode struct{}

func (panicNode) Execute(context.Context, *core.Turn) error { panic("boom") }
func (panicNode) GetName() string                          { return "panic" }
func (panicNode) GetType() core.NodeType                   { return core.NodeTypeNLU }

type errNode struct{}

func (errNode) Execute(context.Context, *core.Turn) error { return errors.New("unavailable") }
func (errNode) GetName() string                          { return "err" }
func (errNode) GetType() core.NodeType                   { return core.NodeTypeNLU }

func TestRespondFallsBackOnFailure(t *testing.T) {
	for name, node := range map[string]core.Node{"panic": panicNode{}, "error": errNode{}} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			registry := newTestRegistry(t)
			pipeline, err := core.NewPipeline(ctx, node)
			require.NoError(t, err)
			registry.deps.Pipeline = pipeline

			res := respond(t, registry.Engine(ctx, "conv-1", "user-1"), "book a room")
			assert.Equal(t, "I'm experiencing a technical difficulty right now. Please try again in a moment.", res.Reply)
			assert.Equal(t, model.IntentGeneral, res.Intent.Primary)
		})
	}
}

func TestRegistrySharesMemoryPerUser(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry(t)

	a := registry.Engine(ctx, "conv-a", "user-1")
	b := registry.Engine(ctx, "conv-b", "user-1")
	c := registry.Engine(ctx, "conv-c", "")

	assert.Same(t, a.Memory(), b.Memory())
	assert.Same(t, a, registry.Engine(ctx, "conv-a", "user-2"))
	assert.Equal(t, AnonymousUser, c.UserID())
	assert.NotEmpty(t, registry.Engine(ctx, "", "user-1").ID())

	registry.End(ctx, "conv-a")
	_, ok := registry.Lookup("conv-a")
	assert.False(t, ok)
	assert.NoError(t, registry.Close(ctx))
}

func TestRegistryEvictsIdleAndLeastRecentConversations(t *testing.T) {
	ctx := context.Background()
	now := testNow
	cfg := testConfig()
	cfg.MaxConversations = 2
	cfg.ConversationIdle = 10 * time.Minute
	deps, err := NewDeps(ctx, cfg, storage.NewMemoryStore(),
		WithRandom(func() float64 { return 0.99 }),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	registry := NewRegistry(deps)

	a := registry.Engine(ctx, "conv-a", "user-1")
	now = now.Add(time.Minute)
	registry.Engine(ctx, "conv-b", "user-2")
	now = now.Add(time.Minute)
	registry.Engine(ctx, "conv-a", "user-1")
	now = now.Add(time.Minute)
	registry.Engine(ctx, "conv-c", "user-3")

	assert.Equal(t, 2, registry.Len())
	_, ok := registry.Lookup("conv-b")
	assert.False(t, ok, "least recently used conversation is evicted")
	_, ok = registry.Lookup("conv-a")
	assert.True(t, ok)

	now = now.Add(11 * time.Minute)
	registry.Engine(ctx, "", "user-1")
	assert.Equal(t, 1, registry.Len())
	_, ok = registry.Lookup("conv-a")
	assert.False(t, ok, "idle conversation is evicted")

	var saved struct {
		SessionHistory []model.SessionEntry `json:"sessionHistory"`
	}
	require.NoError(t, storage.LoadJSON(ctx, deps.Blobs, storage.MemoryKey(a.UserID()), &saved))
	require.Len(t, saved.SessionHistory, 2)
	assert.Equal(t, "conv-a", saved.SessionHistory[0].SessionID)
	assert.NotNil(t, saved.SessionHistory[0].EndTime)
	assert.Nil(t, saved.SessionHistory[1].EndTime)
}

func TestRespondIsSerializedPerConversation(t *testing.T) {
	ctx := context.Background()
	e := newTestRegistry(t).Engine(ctx, "conv-1", "user-1")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Respond(ctx, "Tell me about the spa")
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, e.Memory().TotalInteractions())
	history, err := e.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 20)
}
