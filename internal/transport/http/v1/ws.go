package v1

import (
	"errors"
	"time"

	"hotel_concierge/internal/concierge"
	"hotel_concierge/pkg"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const wsWriteTimeout = 10 * time.Second

// ChatWS upgrades to a WebSocket that carries one ChatRequest frame in and
// one ChatResponse frame out per turn. A frame without a conversation id
// continues the socket's conversation.
// GET /v1/chat/ws
func (h *Handler) ChatWS(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to upgrade websocket")
		return err
	}
	defer ws.Close()
	ws.SetReadLimit(h.maxMessageSize)

	var conversationID string
	for {
		var req pkg.ChatRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("websocket read failed")
			}
			return nil
		}
		if req.ConversationID == "" {
			req.ConversationID = conversationID
		}

		var frame any
		resp, err := h.respond(c, req)
		switch {
		case errors.Is(err, concierge.ErrEmptyMessage):
			frame = pkg.ErrorResponse{Error: "message is required"}
		case err != nil:
			frame = pkg.ErrorResponse{Error: err.Error()}
		default:
			conversationID = resp.ConversationID
			frame = resp
		}

		ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := ws.WriteJSON(frame); err != nil {
			h.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("websocket write failed")
			return nil
		}
	}
}
