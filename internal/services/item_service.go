package services

import (
	"context"
	"fmt"
	"strings"

	"fakti/internal/billing"
	"fakti/internal/common"
	"fakti/internal/models"
	"fakti/internal/repositories"

	"github.com/google/uuid"
)

type ItemInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description"`
	UnitPrice   billing.Amount `json:"unit_price" swaggertype:"string"`
}

type ItemService interface {
	CreateItem(ctx context.Context, ownerID uuid.UUID, in ItemInput) (*models.CatalogItem, error)
	GetItem(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItem, error)
	GetItemDetail(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItemDetail, error)
	UpdateItem(ctx context.Context, ownerID, id uuid.UUID, in ItemInput) (*models.CatalogItem, error)
	DeleteItem(ctx context.Context, ownerID, id uuid.UUID) error
	ListItems(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.CatalogItem, int, error)
}

type itemService struct {
	items repositories.ItemRepository
}

func NewItemService(items repositories.ItemRepository) ItemService {
	return &itemService{items: items}
}

func (s *itemService) CreateItem(ctx context.Context, ownerID uuid.UUID, in ItemInput) (*models.CatalogItem, error) {
	item := &models.CatalogItem{ID: uuid.New()}
	if err := applyItem(item, in); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, ownerID, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItem, error) {
	return s.items.GetByID(ctx, ownerID, id)
}

// GetItemDetail returns the fields copied into a new line item.
func (s *itemService) GetItemDetail(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItemDetail, error) {
	item, err := s.items.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return &models.CatalogItemDetail{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		UnitPrice:   item.UnitPrice.StringFixed(billing.CurrencyPlaces),
	}, nil
}

func (s *itemService) UpdateItem(ctx context.Context, ownerID, id uuid.UUID, in ItemInput) (*models.CatalogItem, error) {
	item, err := s.items.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := applyItem(item, in); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, ownerID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem keeps invoice lines intact; they lose their catalog reference.
func (s *itemService) DeleteItem(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.items.Delete(ctx, ownerID, id)
}

func (s *itemService) ListItems(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.CatalogItem, int, error) {
	return s.items.List(ctx, ownerID, common.SanitizeSearchQuery(search), limit, offset)
}

func applyItem(item *models.CatalogItem, in ItemInput) error {
	price, err := billing.ParseAmount(in.UnitPrice)
	if err != nil {
		return FieldErrors{"unit_price": err.Error()}
	}
	item.Name = strings.TrimSpace(in.Name)
	item.Description = strings.TrimSpace(in.Description)
	item.UnitPrice = price
	return nil
}
