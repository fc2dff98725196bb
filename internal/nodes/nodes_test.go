package nodes

import (
	"context"
	"testing"
	"time"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src/booking"
	"hotel_concierge/src/composer"
	"hotel_concierge/src/conversation"
	"hotel_concierge/src/learning"
	"hotel_concierge/src/model"
	"hotel_concierge/src/nlu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	blobs    *storage.MemoryStore
	sessions *storage.SessionManager
	conv     *conversation.Service
	memory   *learning.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs := storage.NewMemoryStore()
	return &fixture{
		blobs:    blobs,
		sessions: storage.NewSessionManager(blobs, 30*time.Minute, storage.WithSessionClock(func() time.Time { return testNow })),
		conv:     conversation.NewService(conversation.NewBlobRepository(blobs, 0, 0)),
		memory:   learning.New(context.Background(), blobs, "user-1", learning.WithClock(func() time.Time { return testNow })),
	}
}

func (f *fixture) turn(text string) *core.Turn {
	return core.NewTurn("conv-1", "user-1", text, model.LanguageEnglish, "/", f.memory, testNow)
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Reset Memory please", CommandReset, true},
		{"What do you remember about me?", CommandRemember, true},
		{"EXPORT MEMORY", CommandExport, true},
		{"book a room", "", false},
		{"remember me", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := DetectCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandNodeIgnoresOrdinaryText(t *testing.T) {
	f := newFixture(t)
	node := NewCommandNode(composer.New(nil), f.sessions, f.conv)

	turn := f.turn("Tell me about the spa")
	require.NoError(t, node.Execute(context.Background(), turn))
	assert.False(t, turn.Complete)
	assert.Empty(t, turn.Command)
}

func TestCommandNodeExport(t *testing.T) {
	f := newFixture(t)
	node := NewCommandNode(composer.New(nil), f.sessions, f.conv)

	turn := f.turn("export memory")
	require.NoError(t, node.Execute(context.Background(), turn))

	assert.True(t, turn.Complete)
	assert.Equal(t, model.IntentMemoryCommand, turn.Intent.Primary)
	require.NotNil(t, turn.Export)
	assert.Equal(t, "user-1", turn.Export.UserID)
	require.Len(t, turn.Actions, 1)
	assert.Equal(t, CommandExport, turn.Actions[0].Target)
	assert.True(t, turn.Actions[0].Executed)
}

func TestBookingNodeLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	matcher := nlu.NewMatcher(nlu.DefaultTable())
	classify := NewNLUNode(matcher, f.sessions)
	book := NewBookingNode(booking.NewMachine(booking.WithClock(func() time.Time { return testNow })), f.sessions)

	step := func(text string) *core.Turn {
		turn := f.turn(text)
		require.NoError(t, classify.Execute(ctx, turn))
		require.NoError(t, book.Execute(ctx, turn))
		return turn
	}

	turn := step("Book a deluxe room for 2 guests")
	require.NotNil(t, turn.BookingReply)
	assert.Equal(t, "ask_checkin_date", turn.BookingReply.Key)
	assert.Equal(t, "check_in", turn.Metadata["booking_step"])

	saved, err := f.sessions.GetSession(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, saved)

	turn = step("15/03/2025")
	assert.Equal(t, "ask_checkout_date", turn.BookingReply.Key)

	turn = step("18/03/2025")
	assert.Equal(t, booking.KeySummary, turn.BookingReply.Key)

	turn = step("no")
	assert.Equal(t, booking.KeyCancelled, turn.BookingReply.Key)
	assert.Nil(t, turn.Session)
	assert.Equal(t, string(model.StatusCancelled), turn.Metadata["booking_status"])

	saved, err = f.sessions.GetSession(ctx, "conv-1")
	require.NoError(t, err)
	assert.Nil(t, saved)
	require.Len(t, f.memory.Preferences().BookingHistory, 1)
}

func TestBookingNodeSkipsOtherIntents(t *testing.T) {
	f := newFixture(t)
	book := NewBookingNode(booking.NewMachine(), f.sessions)

	turn := f.turn("Tell me about the spa")
	turn.Intent = model.Intent{Primary: model.IntentSpa}
	require.NoError(t, book.Execute(context.Background(), turn))
	assert.Nil(t, turn.BookingReply)
}

func TestRecordNodeSkipsLearningForCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	record := NewRecordNode(f.conv)

	turn := f.turn("what do you remember")
	turn.Command = CommandRemember
	turn.Reply = "I remember 0 interactions with you."
	require.NoError(t, record.Execute(ctx, turn))
	assert.Zero(t, f.memory.TotalInteractions())

	turn = f.turn("Tell me about the spa")
	turn.Intent = model.Intent{Primary: model.IntentSpa, Confidence: 0.85, Language: model.LanguageEnglish}
	turn.Reply = "Our spa offers Swedish massage."
	require.NoError(t, record.Execute(ctx, turn))
	assert.Equal(t, 1, f.memory.TotalInteractions())
	require.Len(t, f.memory.Conversations(0), 1)
	assert.Equal(t, "conv-1", f.memory.Conversations(0)[0].SessionID)

	history, err := f.conv.GetHistory(ctx, "conv-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}
