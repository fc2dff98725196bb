package core

import (
	"context"
	"time"

	"hotel_concierge/src/booking"
	"hotel_concierge/src/learning"
	"hotel_concierge/src/model"
)

// Node is one stage of the turn pipeline. Execute mutates the turn in place.
type Node interface {
	Execute(ctx context.Context, turn *Turn) error
	GetName() string
	GetType() NodeType
}

// NodeType defines the different types of nodes in the pipeline
type NodeType string

const (
	NodeTypeCommand  NodeType = "command"
	NodeTypeNLU      NodeType = "nlu"
	NodeTypeBooking  NodeType = "booking"
	NodeTypeResponse NodeType = "response"
	NodeTypeRecord   NodeType = "record"
)

// Turn carries one utterance through the pipeline.
type Turn struct {
	// Input
	ConversationID string          `json:"conversation_id"`
	UserID         string          `json:"user_id"`
	Text           string          `json:"text"`
	Language       model.Language  `json:"language"`
	Route          string          `json:"route"`
	Received       time.Time       `json:"received"`
	Memory         *learning.Store `json:"-"`

	// Filled by the stages
	Intent         model.Intent          `json:"intent"`
	Command        string                `json:"command,omitempty"`
	Session        *model.BookingSession `json:"session,omitempty"`
	BookingReply   *booking.Reply        `json:"booking_reply,omitempty"`
	Reply          string                `json:"reply"`
	Actions        []model.AgentAction   `json:"actions"`
	ContextualInfo []string              `json:"contextual_info"`
	FollowUps      []string              `json:"follow_ups"`
	Export         *model.Snapshot       `json:"export,omitempty"`

	// Complete stops every stage except recording.
	Complete      bool           `json:"complete"`
	ExecutionPath []string       `json:"execution_path"`
	Metadata      map[string]any `json:"metadata"`
}

// NewTurn prepares a turn for the pipeline.
func NewTurn(conversationID, userID, text string, lang model.Language, route string, memory *learning.Store, at time.Time) *Turn {
	return &Turn{
		ConversationID: conversationID,
		UserID:         userID,
		Text:           text,
		Language:       lang,
		Route:          route,
		Received:       at,
		Memory:         memory,
		Actions:        []model.AgentAction{},
		ContextualInfo: []string{},
		FollowUps:      []string{},
		Metadata:       make(map[string]any),
	}
}
