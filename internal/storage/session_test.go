package storage

import (
	"context"
	"testing"
	"time"

	"hotel_concierge/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessionManager(NewMemoryStore(), 30*time.Minute, WithSessionClock(func() time.Time { return now }))

	got, err := sessions.GetSession(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	session := &model.BookingSession{
		ID: "b1", Type: model.BookingRoom, Status: model.StatusCollectingInfo,
		Data: model.Entities{model.EntityGuests: 2}, Step: 2, TotalSteps: 5,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, sessions.SaveSession(ctx, "c1", session))

	got, err = sessions.GetSession(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Step)
	guests, ok := got.Data.Int(model.EntityGuests)
	assert.True(t, ok)
	assert.Equal(t, 2, guests)

	require.NoError(t, sessions.DeleteSession(ctx, "c1"))
	got, err = sessions.GetSession(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, sessions.SaveSession(ctx, "", session))
	assert.Error(t, sessions.SaveSession(ctx, "c1", nil))
}

func TestSessionManagerExpiresStaleSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file, err := NewFileStore(dir)
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessionManager(file, 30*time.Minute, WithSessionClock(func() time.Time { return now }))

	require.NoError(t, sessions.SaveSession(ctx, "c1", &model.BookingSession{
		ID: "b1", Step: 1, TotalSteps: 5, UpdatedAt: now,
	}))

	now = now.Add(31 * time.Minute)
	got, err := sessions.GetSession(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = file.Load(ctx, BookingKey("c1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateSession(t *testing.T) {
	assert.Error(t, ValidateSession(nil))
	assert.Error(t, ValidateSession(&model.BookingSession{Step: 1, TotalSteps: 5}))
	assert.Error(t, ValidateSession(&model.BookingSession{ID: "b", Step: 6, TotalSteps: 5}))
	assert.NoError(t, ValidateSession(&model.BookingSession{ID: "b", Step: 5, TotalSteps: 5}))
}
