package nlu

import (
	"testing"

	"hotel_concierge/src/model"

	"github.com/stretchr/testify/assert"
)

func TestExtractRoomEntities(t *testing.T) {
	x := NewExtractor(nil)

	entities := x.Extract("From 15/03/2025 to 18-03-25 for 4 people", model.IntentBookRoom)
	assert.Equal(t, "15/03/2025", entities[model.EntityCheckIn])
	assert.Equal(t, "18-03-25", entities[model.EntityCheckOut])
	assert.Equal(t, 4, entities[model.EntityGuests])

	entities = x.Extract("a deluxe room, or maybe a suite", model.IntentBookRoom)
	assert.Equal(t, "suite", entities[model.EntityRoomType])

	entities = x.Extract("غرفة ديلوكس لـ 3 ضيف", model.IntentBookRoom)
	assert.Equal(t, "deluxe", entities[model.EntityRoomType])
	assert.Equal(t, 3, entities[model.EntityGuests])
}

func TestExtractDatesAreRaw(t *testing.T) {
	x := NewExtractor(nil)

	// No calendar validation: an impossible date is still captured.
	entities := x.Extract("99/99/9999", model.IntentBookRoom)
	assert.Equal(t, "99/99/9999", entities[model.EntityCheckIn])
	assert.False(t, entities.Has(model.EntityCheckOut))
}

func TestExtractPerCategory(t *testing.T) {
	x := NewExtractor(nil)

	entities := x.Extract("Turkish food in the coffee lounge", model.IntentDining)
	assert.Equal(t, "turkish", entities[model.EntityCuisine])
	assert.Equal(t, "coffee_lounge", entities[model.EntityVenue])

	entities = x.Extract("couples massage", model.IntentSpa)
	assert.Equal(t, "massage", entities[model.EntityService])
	assert.Equal(t, "couples", entities[model.EntityType])

	entities = x.Extract("a conference for 50 attendees", model.IntentMeeting)
	assert.Equal(t, 50, entities[model.EntityCapacity])
	assert.Equal(t, "conference", entities[model.EntityType])

	entities = x.Extract("can you arrange transport", model.IntentService)
	assert.Equal(t, "transport", entities[model.EntityService])

	entities = x.Extract("what is your cancellation policy", model.IntentInformation)
	assert.Equal(t, "policy", entities[model.EntityTopic])
}

func TestExtractProbesAreScopedToCategory(t *testing.T) {
	x := NewExtractor(nil)

	// Room-only probes do not fire for a dining intent.
	entities := x.Extract("deluxe dinner on 15/03/2025 for 2 guests", model.IntentDining)
	assert.False(t, entities.Has(model.EntityRoomType))
	assert.False(t, entities.Has(model.EntityCheckIn))
	assert.False(t, entities.Has(model.EntityGuests))

	assert.Empty(t, x.Extract("hello", model.IntentGeneral))
	assert.NotNil(t, x.Extract("hello", model.IntentGeneral))
}

func TestExtractName(t *testing.T) {
	x := NewExtractor(nil)

	entities := x.Extract("Hi, my name is sarah", model.IntentGeneral)
	assert.Equal(t, "Sarah", entities[model.EntityName])

	entities = x.Extract("Call me AHMED please", model.IntentGeneral)
	assert.Equal(t, "Ahmed", entities[model.EntityName])

	entities = x.Extract("I'm looking for a room", model.IntentBookRoom)
	assert.False(t, entities.Has(model.EntityName))

	entities = x.Extract("hi amazing hotel", model.IntentGeneral)
	assert.False(t, entities.Has(model.EntityName))
}

func TestDecision(t *testing.T) {
	x := NewExtractor(nil)

	tests := []struct {
		text     string
		decision string
		ok       bool
	}{
		{"Yes please", model.DecisionAffirm, true},
		{"go ahead", model.DecisionAffirm, true},
		{"نعم", model.DecisionAffirm, true},
		{"no thanks", model.DecisionDecline, true},
		{"नहीं", model.DecisionDecline, true},
		{"please cancel it", model.DecisionCancel, true},
		{"yes, cancel", model.DecisionCancel, true},
		{"never mind", model.DecisionCancel, true},
		{"No problem, go ahead", model.DecisionAffirm, true},
		{"yes, no changes needed", model.DecisionAffirm, true},
		{"not ok", model.DecisionDecline, true},
		{"Not okay", model.DecisionDecline, true},
		{"no problem", "", false},
		{"tomorrow", "", false},
		{"nothing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			decision, ok := x.Decision(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.decision, decision)
		})
	}
}
