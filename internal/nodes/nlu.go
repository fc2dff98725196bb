package nodes

import (
	"context"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"
	"hotel_concierge/src/nlu"

	"github.com/rs/zerolog"
)

// NLUNode classifies the utterance and loads the conversation's active
// booking. While a booking is open, entities are extracted as booking
// fields whatever the intent.
type NLUNode struct {
	matcher  *nlu.Matcher
	sessions *storage.SessionManager
	log      zerolog.Logger
}

func NewNLUNode(matcher *nlu.Matcher, sessions *storage.SessionManager) *NLUNode {
	return &NLUNode{
		matcher:  matcher,
		sessions: sessions,
		log:      logger.Component("nlu_node"),
	}
}

func (n *NLUNode) Execute(ctx context.Context, turn *core.Turn) error {
	turn.Intent = n.matcher.Classify(turn.Text, turn.Language)

	session, err := n.sessions.GetSession(ctx, turn.ConversationID)
	if err != nil {
		n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("booking session unavailable, continuing without it")
		session = nil
	}
	if session != nil && !session.Terminal() {
		turn.Session = session
		turn.Intent.Entities = n.matcher.Extractor().Extract(turn.Text, model.IntentBookRoom)
	}

	n.log.Debug().
		Str("conversation_id", turn.ConversationID).
		Str("intent", string(turn.Intent.Primary)).
		Float64("confidence", turn.Intent.Confidence).
		Int("entities", len(turn.Intent.Entities)).
		Bool("booking_active", turn.Session != nil).
		Msg("utterance classified")
	return nil
}

func (n *NLUNode) GetName() string {
	return "nlu"
}

func (n *NLUNode) GetType() core.NodeType {
	return core.NodeTypeNLU
}
