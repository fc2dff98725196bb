package conversation

import (
	"strings"

	"hotel_concierge/src/model"

	"github.com/cloudwego/eino/schema"
)

type ContextStrategy interface {
	BuildContext(messages []*schema.Message) string
	GetMaxTurns() int
}

// ====================== Transcript ======================
// TranscriptStrategy renders the last maxTurns messages as plain lines.
type TranscriptStrategy struct {
	maxTurns int
}

func NewTranscriptStrategy(maxTurns int) *TranscriptStrategy {
	if maxTurns < 1 {
		maxTurns = 10
	}
	return &TranscriptStrategy{maxTurns: maxTurns}
}

func (s *TranscriptStrategy) GetMaxTurns() int {
	return s.maxTurns
}

func (s *TranscriptStrategy) BuildContext(messages []*schema.Message) string {
	recentMessages := trimTail(messages, s.maxTurns)

	var contextBuilder strings.Builder
	for _, msg := range recentMessages {
		switch msg.Role {
		case schema.User:
			contextBuilder.WriteString("Guest: " + msg.Content + "\n")
		case schema.Assistant:
			contextBuilder.WriteString("Huda: " + msg.Content + "\n")
		}
	}
	return strings.TrimSuffix(contextBuilder.String(), "\n")
}

// SchemaMessages converts transcript lines to eino messages.
func SchemaMessages(messages []model.Message) []*schema.Message {
	out := make([]*schema.Message, len(messages))
	for i, m := range messages {
		out[i] = m.Schema()
	}
	return out
}

// Helper function
func trimTail[T any](messages []T, maxTurns int) []T {
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
