package model

import "time"

// Booking sessions are short-term memory: one per conversation, kept with a TTL.
//   booking:{conversation_id} // active BookingSession blob

type BookingType string

const (
	BookingRoom    BookingType = "room"
	BookingDining  BookingType = "dining"
	BookingSpa     BookingType = "spa"
	BookingMeeting BookingType = "meeting"
)

type BookingStatus string

const (
	StatusInitiated      BookingStatus = "initiated"
	StatusCollectingInfo BookingStatus = "collecting_info"
	StatusConfirming     BookingStatus = "confirming"
	StatusCompleted      BookingStatus = "completed"
	StatusCancelled      BookingStatus = "cancelled"
)

// BookingSession tracks one in-progress reservation flow.
type BookingSession struct {
	ID         string        `json:"id"`
	Type       BookingType   `json:"type"`
	Status     BookingStatus `json:"status"`
	Data       Entities      `json:"data"`
	Step       int           `json:"step"`
	TotalSteps int           `json:"totalSteps"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Terminal reports whether the session has reached completed or cancelled.
func (b *BookingSession) Terminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// Clone returns a deep enough copy for callers that must not alias Data.
func (b *BookingSession) Clone() *BookingSession {
	if b == nil {
		return nil
	}
	out := *b
	out.Data = b.Data.Clone()
	return &out
}
