package nodes

import (
	"context"

	"hotel_concierge/internal/core"
	"hotel_concierge/src/conversation"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecordNode writes the finished turn to the transcript and, for ordinary
// turns, to the guest's learning memory.
type RecordNode struct {
	conversation *conversation.Service
	log          zerolog.Logger
}

func NewRecordNode(conv *conversation.Service) *RecordNode {
	return &RecordNode{conversation: conv, log: logger.Component("record_node")}
}

func (n *RecordNode) Execute(ctx context.Context, turn *core.Turn) error {
	if _, err := n.conversation.SaveUserMessage(ctx, turn.ConversationID, turn.Text, turn.Intent); err != nil {
		n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to save user message")
	}
	if _, err := n.conversation.SaveResponse(ctx, turn.ConversationID, turn.Reply, turn.Language); err != nil {
		n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to save response")
	}

	if turn.Command != "" {
		return nil
	}

	turn.Memory.RecordInteraction(ctx, turn.Text, turn.Intent, model.FeedbackNone)
	turn.Memory.RecordConversation(ctx, model.ConversationEntry{
		ID:            uuid.NewString(),
		Timestamp:     turn.Received,
		UserMessage:   turn.Text,
		AgentResponse: turn.Reply,
		Intent:        turn.Intent,
		Route:         turn.Route,
		SessionID:     turn.ConversationID,
		Actions:       turn.Actions,
	})
	return nil
}

func (n *RecordNode) GetName() string {
	return "record"
}

func (n *RecordNode) GetType() core.NodeType {
	return core.NodeTypeRecord
}
