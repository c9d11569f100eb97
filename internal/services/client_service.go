package services

import (
	"context"
	"fmt"
	"strings"

	"fakti/internal/caching"
	"fakti/internal/common"
	"fakti/internal/logging"
	"fakti/internal/models"
	"fakti/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultCountry = "Haiti"

type ClientInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email,max=254"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=500"`
	City    string `json:"city" validate:"max=100"`
	Country string `json:"country" validate:"max=100"`
	Notes   string `json:"notes"`
}

// ClientDetail is a client together with the invoices billed to it.
type ClientDetail struct {
	*models.Client
	Invoices []*models.Invoice `json:"invoices"`
}

type ClientService interface {
	CreateClient(ctx context.Context, ownerID uuid.UUID, in ClientInput) (*models.Client, error)
	GetClient(ctx context.Context, ownerID, id uuid.UUID) (*ClientDetail, error)
	UpdateClient(ctx context.Context, ownerID, id uuid.UUID, in ClientInput) (*models.Client, error)
	DeleteClient(ctx context.Context, ownerID, id uuid.UUID) error
	ListClients(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.Client, int, error)
}

type clientService struct {
	clients     repositories.ClientRepository
	invoices    repositories.InvoiceRepository
	cacheSvc    caching.CacheService
	phoneRegion string
	logger      logrus.FieldLogger
}

func NewClientService(
	clients repositories.ClientRepository,
	invoices repositories.InvoiceRepository,
	cacheSvc caching.CacheService,
	phoneRegion string,
	logger logrus.FieldLogger,
) ClientService {
	return &clientService{
		clients:     clients,
		invoices:    invoices,
		cacheSvc:    cacheSvc,
		phoneRegion: phoneRegion,
		logger:      logger,
	}
}

func (s *clientService) CreateClient(ctx context.Context, ownerID uuid.UUID, in ClientInput) (*models.Client, error) {
	client := &models.Client{ID: uuid.New()}
	if err := s.apply(client, in); err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, ownerID, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.invalidate(ctx, ownerID)
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, ownerID, id uuid.UUID) (*ClientDetail, error) {
	client, err := s.clients.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	invoices, _, err := s.invoices.List(ctx, ownerID, models.InvoiceFilter{ClientID: &id, Limit: 200})
	if err != nil {
		return nil, fmt.Errorf("failed to list client invoices: %w", err)
	}
	markOverdue(invoices, common.Today())
	return &ClientDetail{Client: client, Invoices: invoices}, nil
}

func (s *clientService) UpdateClient(ctx context.Context, ownerID, id uuid.UUID, in ClientInput) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(client, in); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, ownerID, client); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return client, nil
}

// DeleteClient refuses with repositories.ErrClientInUse while invoices
// still reference the client.
func (s *clientService) DeleteClient(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.clients.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *clientService) ListClients(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.Client, int, error) {
	return s.clients.List(ctx, ownerID, common.SanitizeSearchQuery(search), limit, offset)
}

func (s *clientService) apply(client *models.Client, in ClientInput) error {
	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		if err := common.ValidatePhoneNumber(phone, s.phoneRegion); err != nil {
			return FieldErrors{"phone": "Enter a valid phone number."}
		}
	}

	client.Name = strings.TrimSpace(in.Name)
	client.Email = strings.TrimSpace(in.Email)
	client.Phone = phone
	client.Address = strings.TrimSpace(in.Address)
	client.City = strings.TrimSpace(in.City)
	client.Country = strings.TrimSpace(in.Country)
	if client.Country == "" {
		client.Country = DefaultCountry
	}
	client.Notes = strings.TrimSpace(in.Notes)
	return nil
}

func (s *clientService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cacheSvc.InvalidateDashboard(ctx, ownerID); err != nil {
		logging.LogError(s.logger, "clients", "invalidate", "dashboard cache", ownerID, err)
	}
}
