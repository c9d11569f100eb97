package repositories

import (
	"context"
	"fmt"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClientRepository interface {
	Create(ctx context.Context, ownerID uuid.UUID, client *models.Client) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, ownerID uuid.UUID, client *models.Client) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.Client, int, error)
	Recent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Client, error)
	Count(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type clientRepo struct {
	db Database
}

func NewClientRepository(db Database) ClientRepository {
	return &clientRepo{db: db}
}

const clientColumns = `id, owner_id, name, email, phone, address, city, country, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(
		&client.ID, &client.OwnerID, &client.Name, &client.Email, &client.Phone, &client.Address,
		&client.City, &client.Country, &client.Notes, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return client, nil
}

func (r *clientRepo) Create(ctx context.Context, ownerID uuid.UUID, client *models.Client) error {
	client.OwnerID = ownerID
	query := `
		INSERT INTO clients (id, owner_id, name, email, phone, address, city, country, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		client.ID, ownerID, client.Name, client.Email, client.Phone, client.Address,
		client.City, client.Country, client.Notes,
	).Scan(&client.CreatedAt, &client.UpdatedAt)
	return translateError(err)
}

func (r *clientRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1 AND id = $2`
	return scanClient(r.db.QueryRow(ctx, query, ownerID, id))
}

func (r *clientRepo) Update(ctx context.Context, ownerID uuid.UUID, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $3, email = $4, phone = $5, address = $6, city = $7, country = $8, notes = $9, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		ownerID, client.ID, client.Name, client.Email, client.Phone, client.Address,
		client.City, client.Country, client.Notes,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrClientInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of the owner's clients ordered by name, and the
// total number of matches.
func (r *clientRepo) List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]*models.Client, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM clients %s ORDER BY name, created_at LIMIT $%d OFFSET $%d`,
		clientColumns, where, len(args)-1, len(args))

	clients, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepo) Recent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.query(ctx, query, ownerID, limit)
}

func (r *clientRepo) Count(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

func (r *clientRepo) query(ctx context.Context, query string, args ...any) ([]*models.Client, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []*models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
