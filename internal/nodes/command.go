package nodes

import (
	"context"
	"strings"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src/composer"
	"hotel_concierge/src/conversation"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"
	"hotel_concierge/src/nlu"

	"github.com/rs/zerolog"
)

// Memory commands, matched as case-insensitive substrings.
const (
	CommandReset    = "reset memory"
	CommandRemember = "what do you remember"
	CommandExport   = "export memory"
)

var commands = []string{CommandReset, CommandRemember, CommandExport}

// DetectCommand returns the memory command contained in text, if any.
func DetectCommand(text string) (string, bool) {
	normalized := nlu.Normalize(text)
	for _, command := range commands {
		if strings.Contains(normalized, command) {
			return command, true
		}
	}
	return "", false
}

// CommandNode answers memory commands before any classification happens.
type CommandNode struct {
	composer     *composer.Composer
	sessions     *storage.SessionManager
	conversation *conversation.Service
	log          zerolog.Logger
}

func NewCommandNode(c *composer.Composer, sessions *storage.SessionManager, conv *conversation.Service) *CommandNode {
	return &CommandNode{
		composer:     c,
		sessions:     sessions,
		conversation: conv,
		log:          logger.Component("command_node"),
	}
}

func (n *CommandNode) Execute(ctx context.Context, turn *core.Turn) error {
	command, ok := DetectCommand(turn.Text)
	if !ok {
		return nil
	}

	turn.Command = command
	turn.Intent = model.Intent{
		Primary:    model.IntentMemoryCommand,
		Confidence: 1,
		Entities:   model.Entities{},
		Sentiment:  model.SentimentNeutral,
		Urgency:    model.UrgencyLow,
		Language:   turn.Language,
	}

	switch command {
	case CommandReset:
		turn.Memory.Reset(ctx)
		if err := n.sessions.DeleteSession(ctx, turn.ConversationID); err != nil {
			n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to drop booking session on reset")
		}
		if err := n.conversation.Clear(ctx, turn.ConversationID); err != nil {
			n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to clear transcript on reset")
		}
		turn.Session = nil
		turn.Reply = n.composer.Text("memory_reset", turn.Language, nil)
	case CommandRemember:
		turn.Reply = n.composer.MemorySummary(turn.Memory.MemoryStats(), turn.Language)
	case CommandExport:
		snapshot := turn.Memory.ExportSnapshot()
		turn.Export = &snapshot
		turn.Reply = n.composer.Text("memory_export_ready", turn.Language, nil)
	}

	turn.Actions = append(turn.Actions, model.AgentAction{
		Type:      model.ActionMemoryCommand,
		Target:    command,
		Executed:  true,
		Timestamp: turn.Received,
	})
	turn.Complete = true
	n.log.Info().Str("conversation_id", turn.ConversationID).Str("command", command).Msg("memory command handled")
	return nil
}

func (n *CommandNode) GetName() string {
	return "command"
}

func (n *CommandNode) GetType() core.NodeType {
	return core.NodeTypeCommand
}
