package model

import "strconv"

// ----------------------------------------------------
// ================ Intent ================
type IntentName string

const (
	IntentBookRoom      IntentName = "book_room"
	IntentDining        IntentName = "dining_inquiry"
	IntentSpa           IntentName = "spa_booking"
	IntentMeeting       IntentName = "meeting_booking"
	IntentService       IntentName = "service_request"
	IntentInformation   IntentName = "information_request"
	IntentComplaint     IntentName = "complaint"
	IntentGeneral       IntentName = "general_inquiry"
	IntentMemoryCommand IntentName = "memory_command"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Intent is the classification result for one utterance.
type Intent struct {
	Primary    IntentName `json:"primary"`
	Confidence float64    `json:"confidence"`
	Entities   Entities   `json:"entities"`
	Sentiment  Sentiment  `json:"sentiment"`
	Urgency    Urgency    `json:"urgency"`
	Language   Language   `json:"language,omitempty"`
}

// ----------------------------------------------------
// ================ Entities ================
// Entity keys shared by the extractor, the booking machine and the learning store.
const (
	EntityCheckIn  = "checkIn"
	EntityCheckOut = "checkOut"
	EntityGuests   = "guests"
	EntityRoomType = "roomType"
	EntityCuisine  = "cuisine"
	EntityVenue    = "venue"
	EntityService  = "service"
	EntityType     = "type"
	EntityCapacity = "capacity"
	EntityTopic    = "topic"
	EntityName     = "name"
	EntityDecision = "decision"
)

// Decision values carried under EntityDecision.
const (
	DecisionAffirm  = "affirm"
	DecisionCancel  = "cancel"
	DecisionDecline = "decline"
)

// Entities holds extracted fields. Unmatched fields are absent, never nil placeholders.
type Entities map[string]any

func (e Entities) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// String returns the value under key rendered as a string.
func (e Entities) String(key string) (string, bool) {
	v, ok := e[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Int returns the value under key as an int. JSON round trips turn ints into float64.
func (e Entities) Int(key string) (int, bool) {
	v, ok := e[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}

// Clone returns a shallow copy, never nil.
func (e Entities) Clone() Entities {
	out := make(Entities, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge copies every key of other into e, overriding existing values.
func (e Entities) Merge(other Entities) {
	for k, v := range other {
		e[k] = v
	}
}
