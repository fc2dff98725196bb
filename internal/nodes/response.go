package nodes

import (
	"context"
	"slices"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/services"
	"hotel_concierge/src/composer"
	"hotel_concierge/src/model"
)

// ResponseNode composes the reply and the catalog extras shown beside it.
type ResponseNode struct {
	composer *composer.Composer
	hotel    *services.HotelService
}

func NewResponseNode(c *composer.Composer, hotel *services.HotelService) *ResponseNode {
	return &ResponseNode{composer: c, hotel: hotel}
}

func (r *ResponseNode) Execute(ctx context.Context, turn *core.Turn) error {
	prefs := turn.Memory.Preferences()
	req := composer.Request{
		Intent:         turn.Intent,
		Preferences:    prefs,
		Language:       turn.Language,
		RoomBooked:     turn.Memory.HasRoomBooking(),
		SpaInquired:    inquired(prefs, turn.Intent, model.IntentSpa),
		DiningInquired: inquired(prefs, turn.Intent, model.IntentDining),
	}

	topic := turn.Intent.Primary
	if turn.BookingReply != nil {
		turn.Reply = r.composer.ComposeBooking(ctx, *turn.BookingReply, req)
		topic = model.IntentBookRoom
	} else {
		turn.Reply = r.composer.Compose(ctx, req)
	}

	turn.Actions = append(turn.Actions, r.hotel.SuggestedActions(topic, turn.Received)...)
	turn.ContextualInfo = r.hotel.ContextualInfo(topic, prefs)
	turn.FollowUps = r.hotel.FollowUpQuestions(topic)
	turn.Complete = true
	return nil
}

// inquired reports whether the guest asked about topic now or before.
func inquired(prefs model.UserPreferences, intent model.Intent, topic model.IntentName) bool {
	return intent.Primary == topic || slices.Contains(prefs.FrequentRequests, string(topic))
}

func (r *ResponseNode) GetName() string {
	return "response"
}

func (r *ResponseNode) GetType() core.NodeType {
	return core.NodeTypeResponse
}
