package handlers

import (
	"net/http"

	"fakti/internal/common"
	"fakti/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ClientHandlers handles HTTP requests for the owner's clients.
type ClientHandlers struct {
	clientService services.ClientService
	logger        logrus.FieldLogger
}

func NewClientHandlers(clientService services.ClientService, logger logrus.FieldLogger) *ClientHandlers {
	return &ClientHandlers{clientService: clientService, logger: logger}
}

// ListClients godoc
// @Summary List clients
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name or email contains"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} PageResponse
// @Router /v1/clients [get]
func (h *ClientHandlers) ListClients(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset, errs := pagination(c)
	if errs != nil {
		return common.SendValidationErrors(c, errs)
	}

	clients, total, err := h.clientService.ListClients(ctx, ownerID, c.QueryParam("search"), limit, offset)
	if err != nil {
		return respondError(c, h.logger, "client", err)
	}
	return c.JSON(http.StatusOK, PageResponse{Results: clients, Total: total, Limit: limit, Offset: offset})
}

// CreateClient godoc
// @Summary Create a client
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.ClientInput true "Client"
// @Success 201 {object} models.Client
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/clients [post]
func (h *ClientHandlers) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ClientInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	client, err := h.clientService.CreateClient(ctx, ownerID, req)
	if err != nil {
		return respondError(c, h.logger, "client", err)
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClient returns the client together with its invoices.
// @Summary Get a client
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} services.ClientDetail
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/clients/{id} [get]
func (h *ClientHandlers) GetClient(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "client")
	}

	detail, err := h.clientService.GetClient(ctx, ownerID, clientID)
	if err != nil {
		return respondError(c, h.logger, "client", err)
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateClient godoc
// @Summary Update a client
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param body body services.ClientInput true "Client"
// @Success 200 {object} models.Client
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/clients/{id} [put]
func (h *ClientHandlers) UpdateClient(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "client")
	}

	var req services.ClientInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	client, err := h.clientService.UpdateClient(ctx, ownerID, clientID, req)
	if err != nil {
		return respondError(c, h.logger, "client", err)
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient refuses with 409 while invoices still reference the client.
// @Summary Delete a client
// @Tags clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/clients/{id} [delete]
func (h *ClientHandlers) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "client")
	}

	if err := h.clientService.DeleteClient(ctx, ownerID, clientID); err != nil {
		return respondError(c, h.logger, "client", err)
	}
	return c.NoContent(http.StatusNoContent)
}
