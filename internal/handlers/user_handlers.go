package handlers

import (
	"io"
	"net/http"

	"fakti/internal/common"
	"fakti/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// UserHandlers serves the signed in user's own account.
type UserHandlers struct {
	userService services.UserService
	logger      logrus.FieldLogger
}

func NewUserHandlers(userService services.UserService, logger logrus.FieldLogger) *UserHandlers {
	return &UserHandlers{userService: userService, logger: logger}
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// Me godoc
// @Summary Current user's profile
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /v1/me [get]
func (h *UserHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.ProfileInput true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/me [put]
func (h *UserHandlers) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ProfileInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.userService.UpdateProfile(ctx, userID, req)
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// UploadLogo reads the multipart "logo" field. Files over the size limit
// are refused without reading them whole.
// @Summary Upload the business logo
// @Tags account
// @Security BearerAuth
// @Accept multipart/form-data
// @Param logo formData file true "PNG or JPEG, at most 2 MB"
// @Success 200 {object} models.User
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/me/logo [put]
func (h *UserHandlers) UploadLogo(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	header, err := c.FormFile("logo")
	if err != nil {
		return common.SendValidationError(c, "logo", "This field is required.")
	}
	if header.Size > services.MaxLogoSize {
		return respondError(c, h.logger, "user", services.ErrInvalidImage)
	}
	file, err := header.Open()
	if err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxLogoSize+1))
	if err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userService.UploadLogo(ctx, userID, data)
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetLogo godoc
// @Summary Download the business logo
// @Tags account
// @Security BearerAuth
// @Produce png,jpeg
// @Success 200 {file} binary
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/me/logo [get]
func (h *UserHandlers) GetLogo(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}
	data, imageType, err := h.userService.GetLogo(ctx, user)
	if err != nil {
		return respondError(c, h.logger, "logo", err)
	}
	if data == nil {
		return common.SendNotFoundError(c, "logo")
	}

	contentType := "image/png"
	if imageType == "JPG" {
		contentType = "image/jpeg"
	}
	return c.Blob(http.StatusOK, contentType, data)
}

// DeleteAccount removes the user and everything they own.
// @Summary Delete the current account
// @Tags account
// @Security BearerAuth
// @Accept json
// @Param body body DeleteAccountRequest true "Password confirmation"
// @Success 200 {object} common.MessageResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/me [delete]
func (h *UserHandlers) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req DeleteAccountRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.userService.DeleteAccount(ctx, userID, req.Password); err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: common.Translate(c, "Account deleted.")})
}
