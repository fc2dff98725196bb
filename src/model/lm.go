package model

import (
	"strings"
	"time"
)

// ----------------------------------------------------
// ================ Preferences ================
type CommunicationStyle string

const (
	StyleFriendly     CommunicationStyle = "friendly"
	StyleProfessional CommunicationStyle = "professional"
	StyleCasual       CommunicationStyle = "casual"
)

// ParseCommunicationStyle accepts the style names case-insensitively.
func ParseCommunicationStyle(name string) (CommunicationStyle, bool) {
	switch style := CommunicationStyle(strings.ToLower(strings.TrimSpace(name))); style {
	case StyleFriendly, StyleProfessional, StyleCasual:
		return style, true
	default:
		return "", false
	}
}

type RoomPreferences struct {
	Type      string   `json:"type,omitempty"`
	BedType   string   `json:"bedType,omitempty"`
	Floor     string   `json:"floor,omitempty"`
	Amenities []string `json:"amenities"`
}

type DiningPreferences struct {
	Cuisine           []string `json:"cuisine"`
	Dietary           []string `json:"dietary"`
	SeatingPreference string   `json:"seatingPreference,omitempty"`
}

type SpaPreferences struct {
	TreatmentTypes []string `json:"treatmentTypes"`
	PreferredTime  string   `json:"preferredTime,omitempty"`
}

// BookingRecord is a finished booking kept in the guest's history.
type BookingRecord struct {
	Type    BookingType   `json:"type"`
	Date    time.Time     `json:"date"`
	Details Entities      `json:"details"`
	Status  BookingStatus `json:"status"`
}

// UserPreferences is the per-guest preference record.
type UserPreferences struct {
	Name               string             `json:"name,omitempty"`
	Language           Language           `json:"language"`
	RoomPreferences    RoomPreferences    `json:"roomPreferences"`
	DiningPreferences  DiningPreferences  `json:"diningPreferences"`
	SpaPreferences     SpaPreferences     `json:"spaPreferences"`
	CommunicationStyle CommunicationStyle `json:"communicationStyle"`
	FrequentRequests   []string           `json:"frequentRequests"`
	BookingHistory     []BookingRecord    `json:"bookingHistory"`
	PreviousStay       bool               `json:"previousStay,omitempty"`
}

// DefaultPreferences returns the empty preference shape.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Language:           LanguageEnglish,
		RoomPreferences:    RoomPreferences{Amenities: []string{}},
		DiningPreferences:  DiningPreferences{Cuisine: []string{}, Dietary: []string{}},
		SpaPreferences:     SpaPreferences{TreatmentTypes: []string{}},
		CommunicationStyle: StyleFriendly,
		FrequentRequests:   []string{},
		BookingHistory:     []BookingRecord{},
	}
}

// Clone copies every slice so the caller cannot mutate store state.
func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.RoomPreferences.Amenities = append([]string{}, p.RoomPreferences.Amenities...)
	out.DiningPreferences.Cuisine = append([]string{}, p.DiningPreferences.Cuisine...)
	out.DiningPreferences.Dietary = append([]string{}, p.DiningPreferences.Dietary...)
	out.SpaPreferences.TreatmentTypes = append([]string{}, p.SpaPreferences.TreatmentTypes...)
	out.FrequentRequests = append([]string{}, p.FrequentRequests...)
	out.BookingHistory = make([]BookingRecord, len(p.BookingHistory))
	for i, r := range p.BookingHistory {
		r.Details = r.Details.Clone()
		out.BookingHistory[i] = r
	}
	return out
}

// ----------------------------------------------------
// ================ Learning ================
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// LearningPattern is a (intent, normalized-text-prefix) frequency record.
type LearningPattern struct {
	ID         string          `json:"id"`
	Pattern    string          `json:"pattern"`
	Intent     IntentName      `json:"intent"`
	Confidence float64         `json:"confidence"`
	Frequency  int             `json:"frequency"`
	Language   Language        `json:"language"`
	Context    map[string]bool `json:"context,omitempty"`
	LastUsed   time.Time       `json:"lastUsed"`
	Feedback   Feedback        `json:"userFeedback,omitempty"`
}

// BehaviorStats aggregates interactions across patterns.
type BehaviorStats struct {
	CommonIntents      map[string]int `json:"commonIntents"`
	PreferredTimeOfDay map[string]int `json:"preferredTimeOfDay"`
	LanguagePreference Language       `json:"languagePreference"`
}

// ----------------------------------------------------
// ================ Conversation log ================
type ActionType string

const (
	ActionNavigate      ActionType = "navigate"
	ActionOpenBooking   ActionType = "open_booking"
	ActionShowInfo      ActionType = "show_info"
	ActionMemoryCommand ActionType = "memory_command"
)

type AgentAction struct {
	Type      ActionType `json:"type"`
	Target    string     `json:"target"`
	Executed  bool       `json:"executed"`
	Timestamp time.Time  `json:"timestamp"`
}

// ConversationEntry is the durable record of one full turn.
type ConversationEntry struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	UserMessage   string        `json:"userMessage"`
	AgentResponse string        `json:"agentResponse"`
	Intent        Intent        `json:"intent"`
	Route         string        `json:"route"`
	SessionID     string        `json:"sessionId"`
	Actions       []AgentAction `json:"actions"`
}

type SessionEntry struct {
	SessionID        string        `json:"sessionId"`
	StartTime        time.Time     `json:"startTime"`
	EndTime          *time.Time    `json:"endTime,omitempty"`
	Route            string        `json:"route"`
	Interactions     int           `json:"interactions"`
	CompletedActions []AgentAction `json:"completedActions"`
}

// ----------------------------------------------------
// ================ Export ================
// Snapshot is the read-only summary offered for download.
type Snapshot struct {
	ExportDate        time.Time       `json:"exportDate"`
	UserID            string          `json:"userId"`
	TotalInteractions int             `json:"totalInteractions"`
	Preferences       UserPreferences `json:"preferences"`
	ConversationCount int             `json:"conversationCount"`
	LastActive        time.Time       `json:"lastActive"`
	IntentCounts      map[string]int  `json:"intentCounts"`
	TimeOfDay         map[string]int  `json:"timeOfDay"`
}

type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}

// Analytics summarises the learning table.
type Analytics struct {
	TotalPatterns        int              `json:"totalPatterns"`
	TopIntents           []IntentCount    `json:"topIntents"`
	LanguageDistribution map[Language]int `json:"languageDistribution"`
	AverageConfidence    float64          `json:"averageConfidence"`
	MinConfidence        float64          `json:"minConfidence"`
	MaxConfidence        float64          `json:"maxConfidence"`
	WeeklyGrowth         int              `json:"weeklyGrowth"`
	Behavior             BehaviorStats    `json:"behavior"`
}

// MemoryStats feeds the "what do you remember" reply.
type MemoryStats struct {
	TotalInteractions int        `json:"totalInteractions"`
	Name              string     `json:"name,omitempty"`
	RoomType          string     `json:"roomType,omitempty"`
	FrequentRequests  []string   `json:"frequentRequests"`
	LastIntent        IntentName `json:"lastIntent,omitempty"`
}

// FileName is the download name of the snapshot.
func (s Snapshot) FileName() string {
	return "huda-memory-export-" + s.ExportDate.Format("2006-01-02") + ".json"
}
