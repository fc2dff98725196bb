package v1

import (
	"errors"
	"net/http"
	"strings"

	"hotel_concierge/internal/concierge"
	"hotel_concierge/pkg"
	"hotel_concierge/src/i18n"

	"github.com/labstack/echo/v4"
)

// Chat runs one guest utterance through the conversation's engine.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req pkg.ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	resp, err := h.respond(c, req)
	if errors.Is(err, concierge.ErrEmptyMessage) {
		return badRequest(c, "message is required")
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) respond(c echo.Context, req pkg.ChatRequest) (pkg.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return pkg.ChatResponse{}, concierge.ErrEmptyMessage
	}
	ctx := c.Request().Context()
	engine := h.registry.Engine(ctx, req.ConversationID, req.UserID)
	if req.Language != "" {
		engine.SetLanguage(req.Language)
	}
	engine.SetRoute(req.Route)

	res, err := engine.Respond(ctx, req.Message)
	if err != nil {
		return pkg.ChatResponse{}, err
	}
	return pkg.ChatResponse{
		ConversationID: res.ConversationID,
		Reply:          res.Reply,
		Intent:         res.Intent,
		Actions:        res.Actions,
		ContextualInfo: res.ContextualInfo,
		FollowUps:      res.FollowUps,
		Booking:        res.Booking,
		Export:         res.Export,
		Timestamp:      h.now(),
	}, nil
}

// Analyze classifies a message without touching any memory.
// POST /v1/analyze
func (h *Handler) Analyze(c echo.Context) error {
	var req pkg.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Message == "" {
		return badRequest(c, "message is required")
	}

	intent := h.registry.Deps().Matcher.Classify(req.Message, i18n.Resolve(req.Language))
	return c.JSON(http.StatusOK, intent)
}

// Suggestions autocompletes a prefix from the user's learned patterns, lists
// the suggestions of the current page and predicts the prefix's intent.
// GET /v1/suggestions?user_id=&prefix=&language=&route=
func (h *Handler) Suggestions(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.QueryParam("user_id")
	route := c.QueryParam("route")
	if route == "" {
		route = "/"
	}

	prefix := c.QueryParam("prefix")
	lang := i18n.Resolve(c.QueryParam("language"))
	memory := h.registry.Memory(ctx, userID)
	resp := pkg.SuggestionsResponse{
		Suggestions: memory.Suggestions(prefix, lang),
		Predictive:  h.registry.Predictive(ctx, userID, route),
	}
	if p, ok := memory.PredictIntent(prefix, lang); ok {
		resp.Prediction = &pkg.Prediction{Intent: p.Intent, Pattern: p.Pattern, Confidence: p.Confidence}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetConversationMessages returns the transcript, the last n messages when
// limit is set.
// GET /v1/conversations/:conversation_id/messages?limit=
func (h *Handler) GetConversationMessages(c echo.Context) error {
	ctx := c.Request().Context()
	conversationID := c.Param("conversation_id")

	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return badRequest(c, "limit must be an integer")
	}

	messages, err := h.registry.Deps().Conversation.GetHistory(ctx, conversationID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, pkg.MessagesResponse{
		ConversationID: conversationID,
		Messages:       messages,
	})
}

// EndConversation closes a conversation and stamps its end in the guest's
// session history. The transcript is kept.
// DELETE /v1/conversations/:conversation_id
func (h *Handler) EndConversation(c echo.Context) error {
	conversationID := c.Param("conversation_id")
	if _, ok := h.registry.Lookup(conversationID); !ok {
		return c.JSON(http.StatusNotFound, pkg.ErrorResponse{Error: "conversation not found"})
	}
	h.registry.End(c.Request().Context(), conversationID)
	return c.NoContent(http.StatusNoContent)
}
