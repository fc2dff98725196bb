package learning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hotel_concierge/internal/storage"
	"hotel_concierge/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, blobs storage.BlobStore, opts ...Option) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(context.Background(), blobs, "user-1", opts...), clock
}

func intent(name model.IntentName, confidence float64, lang model.Language, entities model.Entities) model.Intent {
	if entities == nil {
		entities = model.Entities{}
	}
	return model.Intent{Primary: name, Confidence: confidence, Language: lang, Entities: entities}
}

func TestRecordInteractionCreatesAndUpdatesPatterns(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, storage.NewMemoryStore())

	s.RecordInteraction(ctx, "Book a room", intent(model.IntentBookRoom, 0.9, model.LanguageEnglish, nil), model.FeedbackNone)
	require.Len(t, s.profile.Patterns, 1)

	p := s.profile.Patterns["book_room_book_a_room"]
	require.NotNil(t, p)
	assert.Equal(t, "book a room", p.Pattern)
	assert.Equal(t, 1, p.Frequency)
	assert.Equal(t, 0.9, p.Confidence)

	clock.now = clock.now.Add(time.Hour)
	s.RecordInteraction(ctx, "book a room", intent(model.IntentBookRoom, 0.5, model.LanguageEnglish, nil), model.FeedbackNone)
	assert.Equal(t, 2, p.Frequency)
	assert.InDelta(t, 0.7, p.Confidence, 1e-9)
	assert.Equal(t, clock.now, p.LastUsed)

	s.RecordInteraction(ctx, "book a room", intent(model.IntentBookRoom, 0.7, model.LanguageEnglish, nil), model.FeedbackPositive)
	assert.InDelta(t, 0.8, p.Confidence, 1e-9)
	assert.Equal(t, model.FeedbackPositive, p.Feedback)

	assert.Equal(t, 3, s.profile.Behavior.CommonIntents["book_room"])
	assert.Equal(t, 3, s.profile.Behavior.PreferredTimeOfDay["morning"])
	assert.Equal(t, 3, s.TotalInteractions())
}

func TestAdjustConfidenceClamps(t *testing.T) {
	assert.Equal(t, 1.0, adjustConfidence(1.0, 1.0, model.FeedbackPositive))
	assert.Equal(t, 0.1, adjustConfidence(0.1, 0.1, model.FeedbackNegative))
	assert.InDelta(t, 0.3, adjustConfidence(0.5, 0.5, model.FeedbackNegative), 1e-9)
	assert.InDelta(t, 0.75, adjustConfidence(0.9, 0.6, model.FeedbackNone), 1e-9)
}

func TestTimeOfDayBuckets(t *testing.T) {
	assert.Equal(t, "morning", timeOfDay(0))
	assert.Equal(t, "morning", timeOfDay(11))
	assert.Equal(t, "afternoon", timeOfDay(12))
	assert.Equal(t, "afternoon", timeOfDay(17))
	assert.Equal(t, "evening", timeOfDay(18))
}

func TestPatternEvictionIsLRU(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, nil, WithCapacity(3))

	for i := 0; i < 3; i++ {
		clock.now = clock.now.Add(time.Minute)
		s.RecordInteraction(ctx, fmt.Sprintf("question %d", i), intent(model.IntentGeneral, 0.5, model.LanguageEnglish, nil), model.FeedbackNone)
	}
	// Refresh the oldest so the second becomes least recently used.
	clock.now = clock.now.Add(time.Minute)
	s.RecordInteraction(ctx, "question 0", intent(model.IntentGeneral, 0.5, model.LanguageEnglish, nil), model.FeedbackNone)

	clock.now = clock.now.Add(time.Minute)
	s.RecordInteraction(ctx, "question 3", intent(model.IntentGeneral, 0.5, model.LanguageEnglish, nil), model.FeedbackNone)

	assert.Len(t, s.profile.Patterns, 3)
	assert.Contains(t, s.profile.Patterns, "general_inquiry_question_0")
	assert.NotContains(t, s.profile.Patterns, "general_inquiry_question_1")
	assert.Contains(t, s.profile.Patterns, "general_inquiry_question_3")
}

func TestEvictionTieBreaksOnFrequency(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	patterns := map[string]*model.LearningPattern{
		"a": {ID: "a", Frequency: 5, LastUsed: at},
		"b": {ID: "b", Frequency: 1, LastUsed: at},
		"c": {ID: "c", Frequency: 1, LastUsed: at.Add(time.Hour)},
	}
	assert.Equal(t, []string{"b"}, evict(patterns, 2))
	assert.Len(t, patterns, 2)
	assert.Nil(t, evict(patterns, 2))
}

func TestLearnPreferences(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	s.RecordInteraction(ctx, "my name is sara", intent(model.IntentGeneral, 0.5, model.LanguageFrench, model.Entities{model.EntityName: "Sara"}), model.FeedbackNone)
	s.RecordInteraction(ctx, "call me bob", intent(model.IntentGeneral, 0.5, model.LanguageFrench, model.Entities{model.EntityName: "Bob"}), model.FeedbackNone)
	s.RecordInteraction(ctx, "a suite", intent(model.IntentBookRoom, 0.9, model.LanguageFrench, model.Entities{model.EntityRoomType: "suite"}), model.FeedbackNone)
	s.RecordInteraction(ctx, "turkish food", intent(model.IntentDining, 0.85, model.LanguageFrench, model.Entities{model.EntityCuisine: "turkish"}), model.FeedbackNone)
	s.RecordInteraction(ctx, "turkish food again", intent(model.IntentDining, 0.85, model.LanguageFrench, model.Entities{model.EntityCuisine: "turkish"}), model.FeedbackNone)
	s.RecordInteraction(ctx, "a massage", intent(model.IntentSpa, 0.85, model.LanguageFrench, model.Entities{model.EntityService: "massage"}), model.FeedbackNone)

	prefs := s.Preferences()
	assert.Equal(t, "Sara", prefs.Name)
	assert.Equal(t, "suite", prefs.RoomPreferences.Type)
	assert.Equal(t, []string{"turkish"}, prefs.DiningPreferences.Cuisine)
	assert.Equal(t, []string{"massage"}, prefs.SpaPreferences.TreatmentTypes)
	assert.Equal(t, model.LanguageFrench, prefs.Language)
	assert.Equal(t, []string{"general_inquiry", "book_room", "dining_inquiry", "spa_booking"}, prefs.FrequentRequests)

	// The returned copy does not alias store state.
	prefs.FrequentRequests[0] = "changed"
	assert.Equal(t, "general_inquiry", s.Preferences().FrequentRequests[0])
}

func TestResetRestoresDefaultsAndKeepsUser(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	s, _ := newTestStore(t, blobs)

	s.RecordInteraction(ctx, "my name is sara", intent(model.IntentGeneral, 0.5, model.LanguageArabic, model.Entities{model.EntityName: "Sara"}), model.FeedbackNone)
	s.RecordConversation(ctx, model.ConversationEntry{ID: "c1", Intent: intent(model.IntentGeneral, 0.5, "", nil)})
	s.Reset(ctx)

	assert.Equal(t, model.DefaultPreferences(), s.Preferences())
	assert.Equal(t, "user-1", s.UserID())
	assert.Equal(t, 0, s.TotalInteractions())
	assert.Empty(t, s.Conversations(0))
	assert.Equal(t, 0, s.Analytics().TotalPatterns)

	reloaded := New(ctx, blobs, "user-1")
	assert.Equal(t, model.DefaultPreferences(), reloaded.Preferences())
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	s, _ := newTestStore(t, blobs)

	s.RecordInteraction(ctx, "turkish food", intent(model.IntentDining, 0.85, model.LanguageEnglish, model.Entities{model.EntityCuisine: "turkish"}), model.FeedbackNone)
	s.RecordConversation(ctx, model.ConversationEntry{ID: "c1", UserMessage: "turkish food", Intent: intent(model.IntentDining, 0.85, "", nil)})

	_, err := blobs.Load(ctx, storage.ProfileKey("user-1"))
	require.NoError(t, err)
	_, err = blobs.Load(ctx, storage.MemoryKey("user-1"))
	require.NoError(t, err)

	reloaded := New(ctx, blobs, "user-1")
	assert.Equal(t, []string{"turkish"}, reloaded.Preferences().DiningPreferences.Cuisine)
	assert.Equal(t, 1, reloaded.TotalInteractions())
	assert.Len(t, reloaded.Conversations(0), 1)
	assert.Equal(t, 1, reloaded.Analytics().TotalPatterns)
	assert.False(t, reloaded.Degraded())
}

type failingStore struct {
	storage.BlobStore
	failLoad bool
	saves    int
}

func (f *failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	if f.failLoad {
		return nil, errors.New("disk on fire")
	}
	return nil, storage.ErrNotFound
}

func (f *failingStore) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	f.saves++
	return errors.New("quota exceeded")
}

func TestStorageFailureDegradesToMemory(t *testing.T) {
	ctx := context.Background()

	broken := &failingStore{}
	s, _ := newTestStore(t, broken)
	assert.False(t, s.Degraded())

	s.RecordInteraction(ctx, "hello", intent(model.IntentGeneral, 0.5, model.LanguageEnglish, nil), model.FeedbackNone)
	assert.True(t, s.Degraded())
	assert.Equal(t, 1, broken.saves)

	s.RecordInteraction(ctx, "hello again", intent(model.IntentGeneral, 0.5, model.LanguageEnglish, nil), model.FeedbackNone)
	assert.Equal(t, 1, broken.saves)
	assert.Equal(t, 2, s.TotalInteractions())

	unreadable := &failingStore{failLoad: true}
	s, _ = newTestStore(t, unreadable)
	assert.True(t, s.Degraded())
	s.Reset(ctx)
	assert.Equal(t, 0, unreadable.saves)
}

func TestRecordConversationCapsLog(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil, WithConversationLimit(3))

	s.BeginSession(ctx, "s1", "/rooms")
	for i := 0; i < 5; i++ {
		s.RecordConversation(ctx, model.ConversationEntry{
			ID:        fmt.Sprintf("c%d", i),
			SessionID: "s1",
			Actions:   []model.AgentAction{{Type: model.ActionNavigate, Target: "/rooms", Executed: i == 0}},
		})
	}

	entries := s.Conversations(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "c2", entries[0].ID)
	assert.Equal(t, "c4", entries[2].ID)
	assert.Len(t, s.Conversations(2), 2)

	require.Len(t, s.memory.SessionHistory, 1)
	assert.Equal(t, 5, s.memory.SessionHistory[0].Interactions)
	assert.Len(t, s.memory.SessionHistory[0].CompletedActions, 1)

	s.BeginSession(ctx, "s1", "/")
	assert.Len(t, s.memory.SessionHistory, 1)
	s.EndSession(ctx, "s1")
	assert.NotNil(t, s.memory.SessionHistory[0].EndTime)
}

func TestBeginSessionCapsHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil, WithSessionLimit(3))

	for i := 0; i < 5; i++ {
		s.BeginSession(ctx, fmt.Sprintf("s%d", i), "/")
	}

	require.Len(t, s.memory.SessionHistory, 3)
	assert.Equal(t, "s2", s.memory.SessionHistory[0].SessionID)
	assert.Equal(t, "s4", s.memory.SessionHistory[2].SessionID)
}

func TestRecordBooking(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	s.RecordBooking(ctx, &model.BookingSession{Type: model.BookingRoom, Status: model.StatusCollectingInfo})
	assert.Empty(t, s.Preferences().BookingHistory)

	s.RecordBooking(ctx, &model.BookingSession{Type: model.BookingRoom, Status: model.StatusCancelled, Data: model.Entities{}})
	assert.False(t, s.Preferences().PreviousStay)
	assert.False(t, s.HasRoomBooking())

	s.RecordBooking(ctx, &model.BookingSession{
		Type: model.BookingRoom, Status: model.StatusCompleted,
		Data: model.Entities{model.EntityRoomType: "deluxe"},
	})
	prefs := s.Preferences()
	assert.True(t, prefs.PreviousStay)
	assert.Equal(t, "deluxe", prefs.RoomPreferences.Type)
	assert.Len(t, prefs.BookingHistory, 2)
	assert.True(t, s.HasRoomBooking())
}

func TestSetCommunicationStylePersists(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	s, _ := newTestStore(t, blobs)
	assert.Equal(t, model.StyleFriendly, s.Preferences().CommunicationStyle)

	s.SetCommunicationStyle(ctx, model.StyleProfessional)

	reloaded, _ := newTestStore(t, blobs)
	assert.Equal(t, model.StyleProfessional, reloaded.Preferences().CommunicationStyle)
}
