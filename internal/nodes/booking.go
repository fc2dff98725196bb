package nodes

import (
	"context"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src/booking"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"

	"github.com/rs/zerolog"
)

// BookingNode opens or advances the room booking. Terminal sessions go to
// the guest's booking history and leave the session manager.
type BookingNode struct {
	machine  *booking.Machine
	sessions *storage.SessionManager
	log      zerolog.Logger
}

func NewBookingNode(machine *booking.Machine, sessions *storage.SessionManager) *BookingNode {
	return &BookingNode{
		machine:  machine,
		sessions: sessions,
		log:      logger.Component("booking_node"),
	}
}

func (n *BookingNode) Execute(ctx context.Context, turn *core.Turn) error {
	var (
		session *model.BookingSession
		reply   booking.Reply
	)
	switch {
	case turn.Session != nil:
		session, reply = n.machine.Advance(turn.Session, turn.Intent.Entities)
	case turn.Intent.Primary == model.IntentBookRoom:
		session, reply = n.machine.Start(turn.Intent.Entities)
	default:
		return nil
	}
	turn.BookingReply = &reply

	if reply.Final {
		turn.Memory.RecordBooking(ctx, session)
		if err := n.sessions.DeleteSession(ctx, turn.ConversationID); err != nil {
			n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to close booking session")
		}
		turn.Session = nil
		turn.Metadata["booking_status"] = string(session.Status)
		n.log.Info().
			Str("conversation_id", turn.ConversationID).
			Str("booking_id", session.ID).
			Str("status", string(session.Status)).
			Msg("booking finished")
		return nil
	}

	if err := n.sessions.SaveSession(ctx, turn.ConversationID, session); err != nil {
		n.log.Warn().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to save booking session")
	}
	turn.Session = session
	turn.Metadata["booking_step"] = booking.StepName(session)
	return nil
}

func (n *BookingNode) GetName() string {
	return "booking"
}

func (n *BookingNode) GetType() core.NodeType {
	return core.NodeTypeBooking
}
