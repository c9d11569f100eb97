package handlers

import (
	"errors"
	"net/http"

	"fakti/internal/common"
	"fakti/internal/logging"
	"fakti/internal/middleware"
	"fakti/internal/models"
	"fakti/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AuthHandlers handles registration, login and password recovery.
type AuthHandlers struct {
	userService services.UserService
	authService services.AuthService
	logger      logrus.FieldLogger
}

func NewAuthHandlers(userService services.UserService, authService services.AuthService, logger logrus.FieldLogger) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		authService: authService,
		logger:      logger,
	}
}

// LoginResponse carries the issued tokens and the signed in user.
type LoginResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// LoginRequest accepts a username or an email address as identifier.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token        string `json:"token" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.RegisterInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if req.Language == "" {
		req.Language = common.GetLanguageFromContext(ctx)
	}

	user, err := h.userService.Register(ctx, req)
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, user.Language)
	if err != nil {
		logging.LogError(h.logger, "handlers", "Register", "generate tokens", user.ID, err)
		return common.SendServerError(c, "Internal server error")
	}
	return c.JSON(http.StatusCreated, LoginResponse{TokenResponse: *tokens, User: user})
}

// Login godoc
// @Summary Sign in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 429 {object} common.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.userService.Authenticate(ctx, req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("INVALID_CREDENTIALS", common.Translate(c, "Invalid username or password."), nil))
	}
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, user.Language)
	if err != nil {
		logging.LogError(h.logger, "handlers", "Login", "generate tokens", user.ID, err)
		return common.SendServerError(c, "Internal server error")
	}
	return c.JSON(http.StatusOK, LoginResponse{TokenResponse: *tokens, User: user})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RefreshTokenRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	tokens, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if errors.Is(err, services.ErrInvalidToken) {
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("INVALID_TOKEN", common.Translate(c, "Invalid or expired token."), nil))
	}
	if err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the presented access token and, when given, the refresh
// token.
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Param body body LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} common.MessageResponse
// @Router /v1/auth/logout [post]
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.RefreshToken != "" {
		if err := h.authService.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			logging.LogError(h.logger, "handlers", "Logout", "revoke refresh token", nil, err)
		}
	}
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		if err := h.authService.RevokeAccessToken(ctx, claims); err != nil {
			logging.LogError(h.logger, "handlers", "Logout", "revoke access token", claims.TokenID, err)
			return common.SendServerError(c, "Internal server error")
		}
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: common.Translate(c, "Logged out.")})
}

// RequestPasswordReset always answers 200 so that registered addresses
// cannot be discovered.
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Param body body PasswordResetRequest true "Account email"
// @Success 200 {object} common.MessageResponse
// @Router /v1/auth/password-reset [post]
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req PasswordResetRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.userService.RequestPasswordReset(ctx, req.Email); err != nil {
		logging.LogError(h.logger, "handlers", "RequestPasswordReset", "request reset", req.Email, err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{
		Message: common.Translate(c, "If an account exists for that email, a reset link has been sent."),
	})
}

// ConfirmPasswordReset godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Param body body PasswordResetConfirmRequest true "Token and new password"
// @Success 200 {object} common.MessageResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/auth/password-reset/confirm [post]
func (h *AuthHandlers) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req PasswordResetConfirmRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.userService.ConfirmPasswordReset(ctx, req.Token, req.NewPassword1, req.NewPassword2); err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: common.Translate(c, "Password changed successfully.")})
}

// ChangePassword godoc
// @Summary Change the signed in user's password
// @Tags account
// @Security BearerAuth
// @Accept json
// @Param body body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} common.MessageResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/me/password [post]
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ChangePasswordRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.userService.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword1, req.NewPassword2); err != nil {
		return respondError(c, h.logger, "user", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: common.Translate(c, "Password changed successfully.")})
}
