package repositories

import (
	"context"
	"fmt"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ItemRepository stores catalog items.
type ItemRepository interface {
	Create(ctx context.Context, ownerID uuid.UUID, item *models.CatalogItem) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItem, error)
	GetMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*models.CatalogItem, error)
	Update(ctx context.Context, ownerID uuid.UUID, item *models.CatalogItem) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.CatalogItem, int, error)
}

type itemRepo struct {
	db Database
}

func NewItemRepository(db Database) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, owner_id, name, description, unit_price, created_at, updated_at`

func scanItem(row pgx.Row) (*models.CatalogItem, error) {
	item := &models.CatalogItem{}
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description, &item.UnitPrice, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, ownerID uuid.UUID, item *models.CatalogItem) error {
	item.OwnerID = ownerID
	query := `
		INSERT INTO items (id, owner_id, name, description, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, item.ID, ownerID, item.Name, item.Description, item.UnitPrice).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	return translateError(err)
}

func (r *itemRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 AND id = $2`
	return scanItem(r.db.QueryRow(ctx, query, ownerID, id))
}

// GetMany returns the subset of ids that exist and belong to the owner.
func (r *itemRepo) GetMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*models.CatalogItem, error) {
	if len(ids) == 0 {
		return []*models.CatalogItem{}, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 AND id = ANY($2)`
	return r.query(ctx, query, ownerID, ids)
}

func (r *itemRepo) Update(ctx context.Context, ownerID uuid.UUID, item *models.CatalogItem) error {
	query := `
		UPDATE items
		SET name = $3, description = $4, unit_price = $5, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, ownerID, item.ID, item.Name, item.Description, item.UnitPrice)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the item; line items that referenced it keep their copied
// description and price.
func (r *itemRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.CatalogItem, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM items `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM items %s ORDER BY name LIMIT $%d OFFSET $%d`,
		itemColumns, where, len(args)-1, len(args))

	items, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepo) query(ctx context.Context, query string, args ...any) ([]*models.CatalogItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []*models.CatalogItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
