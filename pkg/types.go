package pkg

import (
	"time"

	"hotel_concierge/src/model"
)

// Wire types of the HTTP and WebSocket API

// ChatRequest is one guest utterance
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	Message        string `json:"message"`
	Language       string `json:"language,omitempty"`
	Route          string `json:"route,omitempty"`
}

// ChatResponse is the concierge's answer to one utterance
type ChatResponse struct {
	ConversationID string                `json:"conversation_id"`
	Reply          string                `json:"reply"`
	Intent         model.Intent          `json:"intent"`
	Actions        []model.AgentAction   `json:"actions"`
	ContextualInfo []string              `json:"contextual_info"`
	FollowUps      []string              `json:"follow_up_questions"`
	Booking        *model.BookingSession `json:"booking,omitempty"`
	Export         *model.Snapshot       `json:"export,omitempty"`
	Timestamp      time.Time             `json:"timestamp"`
}

// AnalyzeRequest asks for classification only
type AnalyzeRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

// SuggestionsResponse carries prefix completions, page suggestions and the
// predicted intent of the prefix when a learned pattern is confident enough
type SuggestionsResponse struct {
	Suggestions []string    `json:"suggestions"`
	Predictive  []string    `json:"predictive"`
	Prediction  *Prediction `json:"prediction,omitempty"`
}

// Prediction is the learned pattern a prefix most likely completes to
type Prediction struct {
	Intent     model.IntentName `json:"intent"`
	Pattern    string           `json:"pattern"`
	Confidence float64          `json:"confidence"`
}

// PreferencesUpdate changes guest-controlled preferences
type PreferencesUpdate struct {
	CommunicationStyle string `json:"communication_style"`
}

// MessagesResponse is a conversation transcript
type MessagesResponse struct {
	ConversationID string          `json:"conversation_id"`
	Messages       []model.Message `json:"messages"`
}

// ImportResponse reports what an import restored
type ImportResponse struct {
	OK                bool   `json:"ok"`
	UserID            string `json:"user_id"`
	TotalInteractions int    `json:"total_interactions"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
}
