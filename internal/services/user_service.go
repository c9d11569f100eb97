package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fakti/internal/caching"
	"fakti/internal/i18n"
	"fakti/internal/logging"
	"fakti/internal/mailer"
	"fakti/internal/models"
	"fakti/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxLogoSize = 2 << 20

	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
	resetRequestLimit  = 5
	resetRequestWindow = time.Hour
	resetTokenTTL      = time.Hour
)

type RegisterInput struct {
	Username     string `json:"username" validate:"required,min=3,max=150"`
	Email        string `json:"email" validate:"required,email,max=254"`
	BusinessName string `json:"business_name" validate:"max=200"`
	Password1    string `json:"password1" validate:"required"`
	Password2    string `json:"password2" validate:"required"`
	Language     string `json:"language" validate:"omitempty,oneof=en ht"`
}

type ProfileInput struct {
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	BusinessName    string `json:"business_name" validate:"max=200"`
	BusinessAddress string `json:"business_address" validate:"max=500"`
	BusinessPhone   string `json:"business_phone" validate:"max=30"`
	TaxID           string `json:"tax_id" validate:"max=50"`
	Language        string `json:"language" validate:"required,oneof=en ht"`
}

// UserService manages accounts: sign up, credentials and the business
// profile printed on invoices.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword1, newPassword2 string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword1, newPassword2 string) error
	UploadLogo(ctx context.Context, userID uuid.UUID, data []byte) (*models.User, error)
	GetLogo(ctx context.Context, user *models.User) ([]byte, string, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error
}

type UserServiceConfig struct {
	LogoBucket      string
	PublicBaseURL   string
	DefaultLanguage string
}

type userService struct {
	users    repositories.UserRepository
	resets   repositories.PasswordResetRepository
	cacheSvc caching.CacheService
	storage  MinioService
	mail     mailer.Mailer
	cfg      UserServiceConfig
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewUserService(
	users repositories.UserRepository,
	resets repositories.PasswordResetRepository,
	cacheSvc caching.CacheService,
	storage MinioService,
	mail mailer.Mailer,
	cfg UserServiceConfig,
	logger logrus.FieldLogger,
) UserService {
	return &userService{
		users:    users,
		resets:   resets,
		cacheSvc: cacheSvc,
		storage:  storage,
		mail:     mail,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if err := checkNewPassword("password2", in.Password1, in.Password2, username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		BusinessName: strings.TrimSpace(in.BusinessName),
		Language:     i18n.Normalize(in.Language, s.cfg.DefaultLanguage),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate accepts a username, or an email shared by one or more
// accounts. Failed attempts per identifier are rate limited.
func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	limitKey := "login:" + strings.ToLower(identifier)

	exceeded, err := s.cacheSvc.AttemptsExceeded(ctx, limitKey, loginAttemptLimit)
	if err != nil {
		logging.LogError(s.logger, "users", "Authenticate", "rate limit check", nil, err)
	}
	if exceeded {
		return nil, ErrRateLimited
	}

	user, err := s.findByCredentials(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if incErr := s.cacheSvc.IncrementRateLimit(ctx, limitKey, loginAttemptWindow); incErr != nil {
				logging.LogError(s.logger, "users", "Authenticate", "rate limit increment", nil, incErr)
			}
		}
		return nil, err
	}

	_ = s.cacheSvc.ResetRateLimit(ctx, limitKey)
	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		logging.LogError(s.logger, "users", "Authenticate", "touch last login", user.ID, err)
	}
	return user, nil
}

func (s *userService) findByCredentials(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, identifier)
	switch {
	case err == nil:
		if checkPassword(user, password) {
			return user, nil
		}
		return nil, ErrInvalidCredentials
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !strings.Contains(identifier, "@") {
		return nil, ErrInvalidCredentials
	}
	candidates, err := s.users.ListByEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	for _, candidate := range candidates {
		if checkPassword(candidate, password) {
			return candidate, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = strings.TrimSpace(in.Email)
	user.BusinessName = strings.TrimSpace(in.BusinessName)
	user.BusinessAddress = strings.TrimSpace(in.BusinessAddress)
	user.BusinessPhone = strings.TrimSpace(in.BusinessPhone)
	user.TaxID = strings.TrimSpace(in.TaxID)
	user.Language = i18n.Normalize(in.Language, s.cfg.DefaultLanguage)

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword1, newPassword2 string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user, oldPassword) {
		return FieldErrors{"old_password": "Your old password was entered incorrectly."}
	}
	if err := checkNewPassword("new_password2", newPassword1, newPassword2, user.Username, user.Email); err != nil {
		return err
	}
	return s.setPassword(ctx, user.ID, newPassword1)
}

// RequestPasswordReset mails a reset link to every account registered with
// the address. It reports success whether or not any account matched.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	limited, err := s.cacheSvc.IsRateLimited(ctx, "reset:"+strings.ToLower(email), resetRequestLimit, resetRequestWindow)
	if err != nil {
		logging.LogError(s.logger, "users", "RequestPasswordReset", "rate limit", nil, err)
	}
	if limited {
		return nil
	}

	users, err := s.users.ListByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up users: %w", err)
	}

	for _, user := range users {
		token, err := generateSecureToken()
		if err != nil {
			return err
		}
		reset := &models.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: hashToken(token),
			ExpiresAt: s.now().Add(resetTokenTTL),
		}
		if err := s.resets.Create(ctx, reset); err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}

		link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), token)
		greeting := user.FullName()
		if greeting == "" {
			greeting = user.Username
		}
		msg := &mailer.Message{
			To:      []string{user.Email},
			Subject: i18n.T(user.Language, "Password reset"),
			Body: i18n.T(user.Language,
				"Hello %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for this, ignore this email.\n",
				greeting, link),
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			logging.LogError(s.logger, "users", "RequestPasswordReset", "send", user.ID, err)
		}
	}
	return nil
}

func (s *userService) ConfirmPasswordReset(ctx context.Context, token, newPassword1, newPassword2 string) error {
	reset, err := s.resets.GetValid(ctx, hashToken(token), s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to read reset token: %w", err)
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if err := checkNewPassword("new_password2", newPassword1, newPassword2, user.Username, user.Email); err != nil {
		return err
	}

	if err := s.resets.MarkUsed(ctx, reset.ID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	return s.setPassword(ctx, user.ID, newPassword1)
}

func (s *userService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.resets.InvalidateForUser(ctx, userID, s.now()); err != nil {
		logging.LogError(s.logger, "users", "setPassword", "invalidate reset tokens", userID, err)
	}
	return nil
}

var logoTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// UploadLogo stores a PNG or JPEG of at most MaxLogoSize and replaces the
// previous logo.
func (s *userService) UploadLogo(ctx context.Context, userID uuid.UUID, data []byte) (*models.User, error) {
	contentType := http.DetectContentType(data)
	ext, ok := logoTypes[contentType]
	if !ok || len(data) == 0 || len(data) > MaxLogoSize {
		return nil, ErrInvalidImage
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.%s", userID.String(), uuid.NewString(), ext)
	if err := s.storage.PutObject(ctx, s.cfg.LogoBucket, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}
	if err := s.users.UpdateLogo(ctx, userID, &key); err != nil {
		return nil, fmt.Errorf("failed to save logo: %w", err)
	}

	if user.LogoKey != nil {
		if err := s.storage.DeleteObject(ctx, s.cfg.LogoBucket, *user.LogoKey); err != nil {
			logging.LogError(s.logger, "users", "UploadLogo", "delete previous logo", *user.LogoKey, err)
		}
	}
	user.LogoKey = &key
	return user, nil
}

// GetLogo returns the logo bytes and their gofpdf image type, or nil when
// the user has no logo.
func (s *userService) GetLogo(ctx context.Context, user *models.User) ([]byte, string, error) {
	if user.LogoKey == nil || *user.LogoKey == "" {
		return nil, "", nil
	}
	data, err := s.storage.GetObject(ctx, s.cfg.LogoBucket, *user.LogoKey)
	if err != nil {
		return nil, "", err
	}
	imageType := "PNG"
	if strings.HasSuffix(*user.LogoKey, ".jpg") {
		imageType = "JPG"
	}
	return data, imageType, nil
}

// DeleteAccount removes the user and, through the schema, everything they own.
func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user, password) {
		return FieldErrors{"password": "Invalid username or password."}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if user.LogoKey != nil {
		if err := s.storage.DeleteObject(ctx, s.cfg.LogoBucket, *user.LogoKey); err != nil {
			logging.LogError(s.logger, "users", "DeleteAccount", "delete logo", *user.LogoKey, err)
		}
	}
	if err := s.cacheSvc.InvalidateDashboard(ctx, userID); err != nil {
		logging.LogError(s.logger, "users", "DeleteAccount", "invalidate dashboard", userID, err)
	}
	return nil
}

func checkPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// checkNewPassword validates a password typed twice. Mismatch is reported on
// confirmField, strength problems on the field before it.
func checkNewPassword(confirmField, password1, password2, username, email string) error {
	if password1 != password2 {
		return FieldErrors{confirmField: "The two password fields didn't match."}
	}
	if problems := ValidatePassword(password1, username, email); len(problems) > 0 {
		return FieldErrors{strings.TrimSuffix(confirmField, "2") + "1": problems[0]}
	}
	return nil
}
