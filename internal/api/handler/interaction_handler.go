package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// InteractionHandler serves placeholder routes for the interaction log. The
// storage table exists but nothing reads or writes it yet.
type InteractionHandler struct{}

func NewInteractionHandler() *InteractionHandler {
	return &InteractionHandler{}
}

// List handles GET /api/interactions.
//
// @Summary      List interactions (placeholder)
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  interactionListResponse
// @Router       /api/interactions [get]
func (h *InteractionHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, interactionListResponse{
		Message:      "Interaction tracking is coming soon",
		Interactions: []any{},
		Count:        0,
	})
}

// Get handles GET /api/interactions/:id.
//
// @Summary      Get an interaction (not implemented)
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Interaction ID"
// @Failure      501  {object}  errorResponse
// @Router       /api/interactions/{id} [get]
func (h *InteractionHandler) Get(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "Interaction details endpoint is not yet implemented")
}

// Create handles POST /api/interactions.
//
// @Summary      Create an interaction (not implemented)
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Failure      501  {object}  errorResponse
// @Router       /api/interactions [post]
func (h *InteractionHandler) Create(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "Interaction creation is not yet implemented")
}
