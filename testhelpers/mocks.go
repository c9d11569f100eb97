package testhelpers

import (
	"context"
	"io"
	"time"

	"fakti/internal/mailer"
	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByEmail(ctx context.Context, email string) ([]*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLogo(ctx context.Context, id uuid.UUID, logoKey *string) error {
	args := m.Called(ctx, id, logoKey)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) GetValid(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetToken), args.Error(1)
}

func (m *MockPasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, ownerID uuid.UUID, client *models.Client) error {
	args := m.Called(ctx, ownerID, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, ownerID uuid.UUID, client *models.Client) error {
	args := m.Called(ctx, ownerID, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockClientRepository) List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.Client, int, error) {
	args := m.Called(ctx, ownerID, search, limit, offset)
	return args.Get(0).([]*models.Client), args.Int(1), args.Error(2)
}

func (m *MockClientRepository) Recent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Client, error) {
	args := m.Called(ctx, ownerID, limit)
	return args.Get(0).([]*models.Client), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, ownerID uuid.UUID, item *models.CatalogItem) error {
	args := m.Called(ctx, ownerID, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItem, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockItemRepository) GetMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*models.CatalogItem, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).([]*models.CatalogItem), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, ownerID uuid.UUID, item *models.CatalogItem) error {
	args := m.Called(ctx, ownerID, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.CatalogItem, int, error) {
	args := m.Called(ctx, ownerID, search, limit, offset)
	return args.Get(0).([]*models.CatalogItem), args.Int(1), args.Error(2)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice) error {
	args := m.Called(ctx, ownerID, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice) error {
	args := m.Called(ctx, ownerID, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status models.InvoiceStatus) error {
	args := m.Called(ctx, ownerID, id, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkSentIfDraft(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, ownerID uuid.UUID, filter models.InvoiceFilter) ([]*models.Invoice, int, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]*models.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepository) NumberExists(ctx context.Context, ownerID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountCreatedInYear(ctx context.Context, ownerID uuid.UUID, year int) (int, error) {
	args := m.Called(ctx, ownerID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) Stats(ctx context.Context, ownerID uuid.UUID, today time.Time) (*models.DashboardStats, error) {
	args := m.Called(ctx, ownerID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) ListByInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) ([]models.LineItem, error) {
	args := m.Called(ctx, ownerID, invoiceID)
	return args.Get(0).([]models.LineItem), args.Error(1)
}

// Mock infrastructure

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDashboard(ctx context.Context, ownerID uuid.UUID) (*models.DashboardStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockCacheService) SetDashboard(ctx context.Context, ownerID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error {
	args := m.Called(ctx, ownerID, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateDashboard(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) AttemptsExceeded(ctx context.Context, key string, limit int) (bool, error) {
	args := m.Called(ctx, key, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) ResetRateLimit(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockStorage stands in for the object store. PutObject drains the reader
// and passes the bytes to the expectation.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	args := m.Called(ctx, bucketName, objectName, data, objectSize, contentType)
	return args.Error(0)
}

func (m *MockStorage) GetObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	args := m.Called(ctx, bucketName, objectName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}
