package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fakti/internal/common"
	"fakti/internal/logging"
	"fakti/internal/repositories"
	"fakti/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PageResponse wraps one page of a listing.
type PageResponse struct {
	Results interface{} `json:"results"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

// bindAndValidate binds the body into req and runs the echo validator.
// When it reports false the error response has been written and err is
// what the handler should return.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return false, common.SendValidationErrors(c, common.ProcessValidationErrors(err))
	}
	return true, nil
}

// pagination reads limit and offset query parameters.
func pagination(c echo.Context) (int, int, map[string]string) {
	errs := map[string]string{}
	limit, offset := 0, 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["limit"] = "Enter a number."
		}
		limit = n
	}
	if raw := c.QueryParam("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["offset"] = "Enter a number."
		}
		offset = n
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return 0, 0, map[string]string{"offset": err.Error()}
	}
	return limit, offset, nil
}

// respondError maps service and repository errors onto the error envelope.
// Anything unexpected is logged and reported as a server error.
func respondError(c echo.Context, logger logrus.FieldLogger, resource string, err error) error {
	var fieldErrs services.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return common.SendValidationErrors(c, fieldErrs)
	case errors.Is(err, repositories.ErrNotFound):
		return common.SendNotFoundError(c, resource)
	case errors.Is(err, repositories.ErrDuplicateIdentifier):
		return common.SendConflictError(c, "DUPLICATE_IDENTIFIER", "invoice_number", "This invoice number is already used for your account.")
	case errors.Is(err, repositories.ErrDuplicateUsername):
		return common.SendConflictError(c, "DUPLICATE_USERNAME", "username", "A user with that username already exists.")
	case errors.Is(err, repositories.ErrClientInUse):
		return common.SendConflictError(c, "CLIENT_IN_USE", "", "This client cannot be deleted because it has invoices.")
	case errors.Is(err, services.ErrInvalidImage):
		return common.SendValidationError(c, "logo", "Upload a valid image. The file must be PNG or JPEG and at most 2 MB.")
	case errors.Is(err, services.ErrInvalidToken):
		return common.SendValidationError(c, "token", "The password reset link is invalid or has expired.")
	case errors.Is(err, services.ErrRateLimited):
		return common.SendTooManyRequestsError(c)
	case errors.Is(err, services.ErrDeliveryFailed):
		return common.SendBadGatewayError(c, "EMAIL_DELIVERY_FAILED", "The email could not be sent.")
	}

	logging.LogError(logger, "handlers", c.Path(), c.Request().Method, resource, err)
	return common.SendServerError(c, "Internal server error")
}

// HTTPErrorHandler renders errors raised by echo itself (unknown routes,
// body limits, panics caught by Recover) in the JSON error envelope.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			logging.LogError(logger, "handlers", "HTTPErrorHandler", "unhandled error", c.Path(), err)
			he = echo.NewHTTPError(http.StatusInternalServerError)
		}

		var resp *common.ErrorResponse
		switch he.Code {
		case http.StatusNotFound:
			resp = common.CreateErrorResponse("NOT_FOUND", common.Translate(c, "%s not found", common.Translate(c, "resource")), nil)
		case http.StatusRequestEntityTooLarge:
			resp = common.CreateErrorResponse("BODY_TOO_LARGE", common.Translate(c, "Request body too large"), nil)
		case http.StatusUnauthorized:
			resp = common.CreateErrorResponse("UNAUTHORIZED", common.Translate(c, "Unauthorized access"), nil)
		case http.StatusInternalServerError:
			resp = common.CreateErrorResponse("SERVER_ERROR", common.Translate(c, "Internal server error"), nil)
		default:
			resp = common.CreateErrorResponse("HTTP_ERROR", http.StatusText(he.Code), nil)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, resp)
		}
		if err != nil {
			logging.LogError(logger, "handlers", "HTTPErrorHandler", "write response", nil, err)
		}
	}
}
