package v1

import (
	"fmt"
	"net/http"

	"hotel_concierge/pkg"
	"hotel_concierge/src/model"

	"github.com/labstack/echo/v4"
)

// GetPreferences returns what the concierge learned about a user.
// GET /v1/users/:user_id/preferences
func (h *Handler) GetPreferences(c echo.Context) error {
	memory := h.registry.Memory(c.Request().Context(), c.Param("user_id"))
	return c.JSON(http.StatusOK, memory.Preferences())
}

// UpdatePreferences sets the guest's communication style.
// PATCH /v1/users/:user_id/preferences
func (h *Handler) UpdatePreferences(c echo.Context) error {
	ctx := c.Request().Context()

	var req pkg.PreferencesUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	style, ok := model.ParseCommunicationStyle(req.CommunicationStyle)
	if !ok {
		return badRequest(c, "communication_style must be friendly, professional or casual")
	}

	memory := h.registry.Memory(ctx, c.Param("user_id"))
	memory.SetCommunicationStyle(ctx, style)
	return c.JSON(http.StatusOK, memory.Preferences())
}

// ExportMemory downloads the user's memory snapshot.
// GET /v1/users/:user_id/export
func (h *Handler) ExportMemory(c echo.Context) error {
	snap := h.registry.Memory(c.Request().Context(), c.Param("user_id")).ExportSnapshot()
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", snap.FileName()))
	return c.JSON(http.StatusOK, snap)
}

// ImportMemory restores a previously exported snapshot.
// POST /v1/users/:user_id/import
func (h *Handler) ImportMemory(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("user_id")

	var snap model.Snapshot
	if err := c.Bind(&snap); err != nil {
		return badRequest(c, "invalid snapshot")
	}

	memory := h.registry.Memory(ctx, userID)
	memory.ImportSnapshot(ctx, snap)
	h.log.Info().Str("user_id", memory.UserID()).Int("interactions", snap.TotalInteractions).Msg("memory imported")

	return c.JSON(http.StatusOK, pkg.ImportResponse{
		OK:                true,
		UserID:            memory.UserID(),
		TotalInteractions: memory.TotalInteractions(),
	})
}

// ResetMemory forgets everything learned about a user.
// DELETE /v1/users/:user_id/memory
func (h *Handler) ResetMemory(c echo.Context) error {
	ctx := c.Request().Context()
	memory := h.registry.Memory(ctx, c.Param("user_id"))
	memory.Reset(ctx)
	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"user_id": memory.UserID(),
	})
}
