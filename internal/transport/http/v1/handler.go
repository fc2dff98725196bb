// Package v1 exposes the concierge over a JSON API and a WebSocket chat
// endpoint for the site widget.
package v1

import (
	"net/http"
	"time"

	"hotel_concierge/internal/concierge"
	"hotel_concierge/pkg"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const Version = "0.1.0"

// Handler handles HTTP requests.
type Handler struct {
	registry       *concierge.Registry
	upgrader       websocket.Upgrader
	maxMessageSize int64
	now            func() time.Time
	log            zerolog.Logger
}

// NewHandler creates a new handler.
func NewHandler(registry *concierge.Registry, cfg model.ServerConfig) *Handler {
	maxSize := cfg.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 8192
	}
	return &Handler{
		registry:       registry,
		maxMessageSize: maxSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
		log: logger.Component("http"),
	}
}

// NewServer returns an echo instance with middleware and every route.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)
	return e
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Conversation
	e.POST("/v1/chat", h.Chat)
	e.GET("/v1/chat/ws", h.ChatWS)
	e.POST("/v1/analyze", h.Analyze)
	e.GET("/v1/suggestions", h.Suggestions)
	e.GET("/v1/conversations/:conversation_id/messages", h.GetConversationMessages)
	e.DELETE("/v1/conversations/:conversation_id", h.EndConversation)

	// Guest memory
	e.GET("/v1/users/:user_id/preferences", h.GetPreferences)
	e.PATCH("/v1/users/:user_id/preferences", h.UpdatePreferences)
	e.GET("/v1/users/:user_id/export", h.ExportMemory)
	e.POST("/v1/users/:user_id/import", h.ImportMemory)
	e.DELETE("/v1/users/:user_id/memory", h.ResetMemory)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, pkg.HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Error: msg})
}
