package common

import (
	"net/http"

	"fakti/internal/i18n"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// MessageResponse carries a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// Translate renders key in the request language.
func Translate(c echo.Context, key string, args ...any) string {
	return i18n.T(GetLanguageFromContext(c.Request().Context()), key, args...)
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	return SendValidationErrors(c, map[string]string{field: message})
}

// SendValidationErrors sends one response carrying every field error. The
// messages are English keys and get translated here.
func SendValidationErrors(c echo.Context, details map[string]string) error {
	localized := make(map[string]string, len(details))
	for field, message := range details {
		localized[field] = Translate(c, message)
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", Translate(c, "Validation failed"), localized))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", Translate(c, message), nil))
}

// SendConflictError reports a write refused by a uniqueness or reference rule.
func SendConflictError(c echo.Context, code, field, message string) error {
	var details map[string]string
	if field != "" {
		details = map[string]string{field: Translate(c, message)}
	}
	return c.JSON(http.StatusConflict, CreateErrorResponse(code, Translate(c, message), details))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", Translate(c, message), nil))
}

// SendBadGatewayError reports a failing upstream such as the mail server.
func SendBadGatewayError(c echo.Context, code, message string) error {
	return c.JSON(http.StatusBadGateway, CreateErrorResponse(code, Translate(c, message), nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", Translate(c, "%s not found", Translate(c, resource)), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", Translate(c, "Unauthorized access"), nil))
}

func SendTooManyRequestsError(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, CreateErrorResponse("RATE_LIMITED", Translate(c, "Too many attempts, try again later."), nil))
}
