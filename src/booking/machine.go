// Package booking runs the room reservation step machine:
// check_in -> check_out -> guests -> room_type -> confirmation.
package booking

import (
	"time"

	"hotel_concierge/src/model"

	"github.com/google/uuid"
)

// Step binds a state to the entity it waits for and the prompt asking for it.
type Step struct {
	Name   string
	Field  string
	Prompt string
}

// Steps are in fixed order; Step i of a session is Steps[i-1].
var Steps = []Step{
	{Name: "check_in", Field: model.EntityCheckIn, Prompt: "ask_checkin_date"},
	{Name: "check_out", Field: model.EntityCheckOut, Prompt: "ask_checkout_date"},
	{Name: "guests", Field: model.EntityGuests, Prompt: "ask_guests_count"},
	{Name: "room_type", Field: model.EntityRoomType, Prompt: "ask_room_preference"},
	{Name: "confirmation", Prompt: "booking_summary"},
}

// TotalSteps is the step number of the confirmation state.
var TotalSteps = len(Steps)

// Template keys for replies that are not step prompts.
const (
	KeyStart     = "room_booking_start"
	KeySummary   = "booking_summary"
	KeyConfirmed = "booking_confirmed"
	KeyCancelled = "booking_cancelled"
	KeyError     = "booking_error"
)

// Reply names the template to render and its parameters. Final is set once
// the session reached a terminal status and should be closed by the caller.
type Reply struct {
	Key    string
	Params map[string]string
	Final  bool
}

// Machine drives the five-step room booking. It holds no session state.
type Machine struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDs replaces the uuid session id generator.
func WithIDs(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens a room booking seeded with whatever booking fields the opening
// utterance carried. Already-filled steps are skipped.
func (m *Machine) Start(entities model.Entities) (*model.BookingSession, Reply) {
	now := m.now()
	session := &model.BookingSession{
		ID:         m.newID(),
		Type:       model.BookingRoom,
		Status:     model.StatusInitiated,
		Data:       model.Entities{},
		Step:       1,
		TotalSteps: TotalSteps,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, step := range Steps {
		if step.Field != "" && entities.Has(step.Field) {
			session.Data[step.Field] = entities[step.Field]
		}
	}
	if len(session.Data) == 0 {
		return session, Reply{Key: KeyStart}
	}

	session.Status = model.StatusCollectingInfo
	skipFilled(session)
	return session, prompt(session)
}

// Advance feeds one turn's entities into the session and returns the next
// session state with the reply. The input session is never modified. When
// the current step's field is absent the step stays put and its prompt is
// emitted again.
func (m *Machine) Advance(session *model.BookingSession, entities model.Entities) (*model.BookingSession, Reply) {
	if session == nil || session.Step < 1 || session.Step > TotalSteps || session.Terminal() {
		return session, Reply{Key: KeyError}
	}
	next := session.Clone()
	if next.Data == nil {
		next.Data = model.Entities{}
	}
	next.UpdatedAt = m.now()
	decision, _ := entities.String(model.EntityDecision)

	if next.Step == TotalSteps {
		switch decision {
		case model.DecisionAffirm:
			next.Status = model.StatusCompleted
			return next, Reply{Key: KeyConfirmed, Final: true}
		case model.DecisionCancel, model.DecisionDecline:
			next.Status = model.StatusCancelled
			return next, Reply{Key: KeyCancelled, Final: true}
		default:
			return next, prompt(next)
		}
	}

	if decision == model.DecisionCancel {
		next.Status = model.StatusCancelled
		return next, Reply{Key: KeyCancelled, Final: true}
	}

	current := Steps[next.Step-1]
	value, ok := fieldValue(current, entities)

	for _, step := range Steps {
		if step.Field == "" || step.Field == current.Field || !entities.Has(step.Field) {
			continue
		}
		// A lone date answering check_out arrives as checkIn.
		if current.Field == model.EntityCheckOut && step.Field == model.EntityCheckIn && !entities.Has(model.EntityCheckOut) {
			continue
		}
		next.Data[step.Field] = entities[step.Field]
	}

	next.Status = model.StatusCollectingInfo
	if ok {
		next.Data[current.Field] = value
		next.Step++
		skipFilled(next)
	}
	return next, prompt(next)
}

// Summary returns the parameters of the confirmation summary.
func Summary(session *model.BookingSession) map[string]string {
	params := make(map[string]string, 4)
	for _, step := range Steps {
		if step.Field == "" {
			continue
		}
		v, _ := session.Data.String(step.Field)
		params[step.Field] = v
	}
	return params
}

// StepName returns the state name of the session's current step.
func StepName(session *model.BookingSession) string {
	if session == nil || session.Step < 1 || session.Step > TotalSteps {
		return ""
	}
	return Steps[session.Step-1].Name
}

func fieldValue(step Step, entities model.Entities) (any, bool) {
	if v, ok := entities[step.Field]; ok {
		return v, true
	}
	if step.Field == model.EntityCheckOut {
		if v, ok := entities[model.EntityCheckIn]; ok {
			return v, true
		}
	}
	return nil, false
}

func skipFilled(session *model.BookingSession) {
	for session.Step < TotalSteps && session.Data.Has(Steps[session.Step-1].Field) {
		session.Step++
	}
	if session.Step == TotalSteps {
		session.Status = model.StatusConfirming
	}
}

func prompt(session *model.BookingSession) Reply {
	if session.Step == TotalSteps {
		return Reply{Key: KeySummary, Params: Summary(session)}
	}
	return Reply{Key: Steps[session.Step-1].Prompt}
}
