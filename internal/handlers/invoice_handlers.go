package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fakti/internal/common"
	"fakti/internal/logging"
	"fakti/internal/models"
	"fakti/internal/reports"
	"fakti/internal/repositories"
	"fakti/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// InvoiceHandlers handles HTTP requests for invoices and their documents.
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
	logger         logrus.FieldLogger
}

func NewInvoiceHandlers(invoiceService services.InvoiceService, logger logrus.FieldLogger) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService, logger: logger}
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SendResponse acknowledges a delivered invoice email.
type SendResponse struct {
	Message string          `json:"message"`
	Invoice *models.Invoice `json:"invoice"`
}

// ListInvoices godoc
// @Summary List invoices
// @Description Each row carries is_overdue, computed from the due date and status.
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param status query string false "draft, sent, paid, overdue or canceled"
// @Param client query string false "Client ID"
// @Param search query string false "Invoice number or client name contains"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} PageResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/invoices [get]
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset, errs := pagination(c)
	if errs == nil {
		errs = map[string]string{}
	}
	filter := models.InvoiceFilter{Search: c.QueryParam("search"), Limit: limit, Offset: offset}
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		status := models.InvoiceStatus(raw)
		if !status.IsValid() {
			errs["status"] = "Select a valid choice."
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.QueryParam("client")); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			errs["client"] = "Select a valid choice."
		}
		filter.ClientID = &clientID
	}
	if len(errs) > 0 {
		return common.SendValidationErrors(c, errs)
	}

	invoices, total, err := h.invoiceService.ListInvoices(ctx, ownerID, filter)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, PageResponse{Results: invoices, Total: total, Limit: limit, Offset: offset})
}

// Defaults godoc
// @Summary Prefill values for a new invoice
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.InvoiceDefaults
// @Router /v1/invoices/defaults [get]
func (h *InvoiceHandlers) Defaults(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	defaults, err := h.invoiceService.Defaults(ctx, ownerID)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, defaults)
}

// CreateInvoice stores the invoice and its lines with recalculated totals.
// @Summary Create an invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.InvoiceInput true "Invoice"
// @Success 201 {object} models.Invoice
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/invoices [post]
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.InvoiceInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	invoice, err := h.invoiceService.CreateInvoice(ctx, ownerID, req)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// GetInvoice godoc
// @Summary Get an invoice with its lines
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/invoices/{id} [get]
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	invoice, err := h.invoiceService.GetInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice replaces the invoice fields and its whole set of lines.
// @Summary Update an invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body services.InvoiceInput true "Invoice"
// @Success 200 {object} models.Invoice
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/invoices/{id} [put]
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	var req services.InvoiceInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	invoice, err := h.invoiceService.UpdateInvoice(ctx, ownerID, invoiceID, req)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateStatus godoc
// @Summary Change an invoice's status
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} models.Invoice
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/invoices/{id}/status [patch]
func (h *InvoiceHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	var req StatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	invoice, err := h.invoiceService.UpdateStatus(ctx, ownerID, invoiceID, req.Status)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice godoc
// @Summary Delete an invoice
// @Tags invoices
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/invoices/{id} [delete]
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	if err := h.invoiceService.DeleteInvoice(ctx, ownerID, invoiceID); err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadPDF streams the rendered invoice as an attachment.
// @Summary Download the invoice PDF
// @Tags invoices
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/invoices/{id}/pdf [get]
func (h *InvoiceHandlers) DownloadPDF(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	rendered, err := h.invoiceService.RenderPDF(ctx, ownerID, invoiceID)
	if err != nil {
		return h.pdfError(c, "DownloadPDF", invoiceID, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	return c.Blob(http.StatusOK, "application/pdf", rendered.Data)
}

// StorePDF renders the invoice into object storage and returns a link
// valid for 24 hours.
// @Summary Store the invoice PDF and get a download link
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} services.StoredPDF
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/invoices/{id}/pdf [post]
func (h *InvoiceHandlers) StorePDF(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	stored, err := h.invoiceService.StorePDF(ctx, ownerID, invoiceID)
	if err != nil {
		return h.pdfError(c, "StorePDF", invoiceID, err)
	}
	return c.JSON(http.StatusOK, stored)
}

func (h *InvoiceHandlers) pdfError(c echo.Context, funcName string, invoiceID uuid.UUID, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "invoice")
	}
	logging.LogError(h.logger, "handlers", funcName, "render pdf", invoiceID, err)
	return common.SendServerError(c, "The PDF could not be generated.")
}

// EmailDefaults godoc
// @Summary Prefill values for the send form
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} services.EmailDefaults
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/invoices/{id}/email-defaults [get]
func (h *InvoiceHandlers) EmailDefaults(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	defaults, err := h.invoiceService.EmailDefaults(ctx, ownerID, invoiceID)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, defaults)
}

// SendInvoice emails the invoice. A draft becomes sent once the mail server
// accepted the message; a delivery failure leaves the invoice untouched.
// @Summary Email an invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body services.SendInput true "Message"
// @Success 200 {object} SendResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Failure 502 {object} common.ErrorResponse
// @Router /v1/invoices/{id}/send [post]
func (h *InvoiceHandlers) SendInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	var req services.SendInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.invoiceService.SendInvoice(ctx, ownerID, invoiceID, req)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, SendResponse{Message: common.Translate(c, "Invoice sent."), Invoice: invoice})
}

// Export godoc
// @Summary Export all invoices as a spreadsheet
// @Tags invoices
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /v1/invoices/export [get]
func (h *InvoiceHandlers) Export(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	data, err := h.invoiceService.Export(ctx, ownerID)
	if err != nil {
		return respondError(c, h.logger, "invoice", err)
	}

	filename := fmt.Sprintf("invoices_%s.xlsx", common.Today().Format(common.DateLayout))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, reports.ContentTypeXLSX, data)
}
