package handlers

import (
	"net/http"

	"fakti/internal/common"
	"fakti/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ItemHandlers handles HTTP requests for catalog items.
type ItemHandlers struct {
	itemService services.ItemService
	logger      logrus.FieldLogger
}

func NewItemHandlers(itemService services.ItemService, logger logrus.FieldLogger) *ItemHandlers {
	return &ItemHandlers{itemService: itemService, logger: logger}
}

// ListItems godoc
// @Summary List catalog items
// @Tags items
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name contains"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} PageResponse
// @Router /v1/items [get]
func (h *ItemHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset, errs := pagination(c)
	if errs != nil {
		return common.SendValidationErrors(c, errs)
	}

	items, total, err := h.itemService.ListItems(ctx, ownerID, c.QueryParam("search"), limit, offset)
	if err != nil {
		return respondError(c, h.logger, "item", err)
	}
	return c.JSON(http.StatusOK, PageResponse{Results: items, Total: total, Limit: limit, Offset: offset})
}

// CreateItem godoc
// @Summary Create a catalog item
// @Tags items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.ItemInput true "Item"
// @Success 201 {object} models.CatalogItem
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/items [post]
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ItemInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	item, err := h.itemService.CreateItem(ctx, ownerID, req)
	if err != nil {
		return respondError(c, h.logger, "item", err)
	}
	return c.JSON(http.StatusCreated, item)
}

// GetItem godoc
// @Summary Get a catalog item
// @Tags items
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.CatalogItem
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/items/{id} [get]
func (h *ItemHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "item")
	}

	item, err := h.itemService.GetItem(ctx, ownerID, itemID)
	if err != nil {
		return respondError(c, h.logger, "item", err)
	}
	return c.JSON(http.StatusOK, item)
}

// GetItemDetail returns the fields used to prefill an invoice line.
// @Summary Item details for a line item
// @Tags items
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.CatalogItemDetail
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/items/{id}/detail [get]
func (h *ItemHandlers) GetItemDetail(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "item")
	}

	detail, err := h.itemService.GetItemDetail(ctx, ownerID, itemID)
	if err != nil {
		return respondError(c, h.logger, "item", err)
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateItem godoc
// @Summary Update a catalog item
// @Tags items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param body body services.ItemInput true "Item"
// @Success 200 {object} models.CatalogItem
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/items/{id} [put]
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "item")
	}

	var req services.ItemInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	item, err := h.itemService.UpdateItem(ctx, ownerID, itemID, req)
	if err != nil {
		return respondError(c, h.logger, "item", err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem removes the item. Invoice lines that used it keep their copy
// of its description and price.
// @Summary Delete a catalog item
// @Tags items
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 204
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/items/{id} [delete]
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "item")
	}

	if err := h.itemService.DeleteItem(ctx, ownerID, itemID); err != nil {
		return respondError(c, h.logger, "item", err)
	}
	return c.NoContent(http.StatusNoContent)
}
