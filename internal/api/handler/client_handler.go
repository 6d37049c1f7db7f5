package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/n1fty/cms/internal/api/metrics"
	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /api/clients safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// ClientHandler handles HTTP requests for client records.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List handles GET /api/clients.
//
// @Summary      List active clients
// @Description  Newest first. search matches name or email, case-insensitive.
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring filter"
// @Success      200     {object}  clientListResponse
// @Failure      401     {object}  errorResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	clients, err := h.service.ListClients(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	return c.JSON(http.StatusOK, clientListResponse{Clients: clients, Count: len(clients)})
}

// Get handles GET /api/clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  clientResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}

	client, err := h.service.GetClient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientResponse{Client: client})
}

// Create handles POST /api/clients. A repeated Idempotency-Key from the same
// user returns the original client with 200.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Retry key"
// @Param        body             body      clientRequest  true   "Client"
// @Success      201              {object}  clientResponse
// @Success      200              {object}  clientResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		return echo.NewHTTPError(http.StatusBadRequest, "Idempotency-Key is too long").SetInternal(domain.ErrValidation)
	}

	res, err := h.service.CreateClient(c.Request().Context(), ports.CreateClientInput{
		ClientInput:    req.toInput(),
		CreatedBy:      caller.UserID,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	if res.Replayed {
		metrics.IdempotentReplaysTotal.Inc()
		return c.JSON(http.StatusOK, clientResponse{Message: "Client created successfully", Client: res.Client})
	}
	metrics.ClientsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, clientResponse{Message: "Client created successfully", Client: res.Client})
}

// Update handles PUT /api/clients/:id. The body replaces all writable fields.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Client ID"
// @Param        body  body      clientRequest  true  "Client"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.UpdateClient(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientResponse{Message: "Client updated successfully", Client: client})
}

// Delete handles DELETE /api/clients/:id. Admin only.
//
// @Summary      Soft-delete a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteClient(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.ClientsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Client deleted successfully"})
}

func clientID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid client id").SetInternal(domain.ErrValidation)
	}
	return id, nil
}

func (r clientRequest) toInput() ports.ClientInput {
	return ports.ClientInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Notes: r.Notes}
}
