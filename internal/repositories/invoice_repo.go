package repositories

import (
	"context"
	"fmt"
	"time"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InvoiceRepository stores invoices together with their line items. Every
// method is scoped to one owner.
type InvoiceRepository interface {
	Create(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice) error
	UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status models.InvoiceStatus) error
	MarkSentIfDraft(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filter models.InvoiceFilter) ([]*models.Invoice, int, error)
	NumberExists(ctx context.Context, ownerID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	CountCreatedInYear(ctx context.Context, ownerID uuid.UUID, year int) (int, error)
	Stats(ctx context.Context, ownerID uuid.UUID, today time.Time) (*models.DashboardStats, error)
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepository(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceSelect = `
		SELECT i.id, i.owner_id, i.client_id, c.name, i.invoice_number, i.issue_date, i.due_date, i.currency,
			i.status, i.tax_percent, i.discount_percent, i.subtotal, i.tax_amount, i.discount_amount, i.total,
			i.notes, i.created_at, i.updated_at
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.OwnerID, &inv.ClientID, &inv.ClientName, &inv.InvoiceNumber, &inv.IssueDate,
		&inv.DueDate, &inv.Currency, &inv.Status, &inv.TaxPercent, &inv.DiscountPercent, &inv.Subtotal,
		&inv.TaxAmount, &inv.DiscountAmount, &inv.Total, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return inv, nil
}

// Create inserts the invoice and its line items atomically. A number already
// used by the same owner fails with ErrDuplicateIdentifier.
func (r *invoiceRepo) Create(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice) error {
	invoice.OwnerID = ownerID

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		INSERT INTO invoices (id, owner_id, client_id, invoice_number, issue_date, due_date, currency, status,
			tax_percent, discount_percent, subtotal, tax_amount, discount_amount, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query,
		invoice.ID, ownerID, invoice.ClientID, invoice.InvoiceNumber, invoice.IssueDate, invoice.DueDate,
		invoice.Currency, invoice.Status, invoice.TaxPercent, invoice.DiscountPercent, invoice.Subtotal,
		invoice.TaxAmount, invoice.DiscountAmount, invoice.Total, invoice.Notes,
	)
	if err != nil {
		return translateError(err)
	}

	if err := insertLineItems(ctx, tx, invoice.ID, invoice.LineItems); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, invoiceSelect+` WHERE i.owner_id = $1 AND i.id = $2`, ownerID, id))
	if err != nil {
		return nil, err
	}

	lines, err := listLineItems(ctx, r.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = lines
	return inv, nil
}

// Update rewrites the invoice header and replaces its line items.
func (r *invoiceRepo) Update(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		UPDATE invoices
		SET client_id = $3, invoice_number = $4, issue_date = $5, due_date = $6, currency = $7, status = $8,
			tax_percent = $9, discount_percent = $10, subtotal = $11, tax_amount = $12, discount_amount = $13,
			total = $14, notes = $15, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
	`
	tag, err := tx.Exec(ctx, query,
		ownerID, invoice.ID, invoice.ClientID, invoice.InvoiceNumber, invoice.IssueDate, invoice.DueDate,
		invoice.Currency, invoice.Status, invoice.TaxPercent, invoice.DiscountPercent, invoice.Subtotal,
		invoice.TaxAmount, invoice.DiscountAmount, invoice.Total, invoice.Notes,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, invoice.ID); err != nil {
		return fmt.Errorf("failed to clear line items: %w", err)
	}
	if err := insertLineItems(ctx, tx, invoice.ID, invoice.LineItems); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status models.InvoiceStatus) error {
	query := `UPDATE invoices SET status = $3, updated_at = NOW() WHERE owner_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, ownerID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSentIfDraft moves a draft invoice to sent. It reports false, without
// error, when the invoice was in any other status.
func (r *invoiceRepo) MarkSentIfDraft(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	query := `
		UPDATE invoices SET status = $3, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND status = $4
	`
	tag, err := r.db.Exec(ctx, query, ownerID, id, models.InvoiceStatusSent, models.InvoiceStatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the invoice; its line items cascade.
func (r *invoiceRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of invoices, newest first, without line items.
func (r *invoiceRepo) List(ctx context.Context, ownerID uuid.UUID, filter models.InvoiceFilter) ([]*models.Invoice, int, error) {
	where := ` WHERE i.owner_id = $1`
	args := []any{ownerID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(` AND i.status = $%d`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where += fmt.Sprintf(` AND i.client_id = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (i.invoice_number ILIKE $%d OR c.name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM invoices i JOIN clients c ON c.id = i.client_id` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := invoiceSelect + where + fmt.Sprintf(` ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// NumberExists is the advisory pre-check for the per-owner uniqueness rule.
// excludeID skips the invoice being edited.
func (r *invoiceRepo) NumberExists(ctx context.Context, ownerID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE owner_id = $1 AND invoice_number = $2 AND ($3::uuid IS NULL OR id <> $3::uuid)
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, ownerID, number, excludeID).Scan(&exists)
	return exists, err
}

func (r *invoiceRepo) CountCreatedInYear(ctx context.Context, ownerID uuid.UUID, year int) (int, error) {
	query := `SELECT COUNT(*) FROM invoices WHERE owner_id = $1 AND EXTRACT(YEAR FROM created_at) = $2`
	var count int
	err := r.db.QueryRow(ctx, query, ownerID, year).Scan(&count)
	return count, err
}

// Stats aggregates the owner's invoices in one pass. The overdue count is
// computed from due dates, not read from the stored status.
func (r *invoiceRepo) Stats(ctx context.Context, ownerID uuid.UUID, today time.Time) (*models.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'overdue'),
			COUNT(*) FILTER (WHERE status = 'canceled'),
			COUNT(*) FILTER (WHERE status <> 'paid'),
			COUNT(*) FILTER (WHERE due_date < $2 AND status IN ('sent', 'draft')),
			COALESCE(SUM(total), 0),
			COALESCE(SUM(total) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(total) FILTER (WHERE status <> 'paid'), 0)
		FROM invoices
		WHERE owner_id = $1
	`
	stats := &models.DashboardStats{}
	err := r.db.QueryRow(ctx, query, ownerID, today).Scan(
		&stats.TotalInvoices, &stats.DraftCount, &stats.SentCount, &stats.PaidCount, &stats.MarkedOverdue,
		&stats.CanceledCount, &stats.UnpaidCount, &stats.OverdueCount, &stats.TotalAmount, &stats.Revenue,
		&stats.Outstanding,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate invoices: %w", err)
	}
	return stats, nil
}
