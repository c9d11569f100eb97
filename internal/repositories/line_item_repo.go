package repositories

import (
	"context"
	"fmt"

	"fakti/internal/models"

	"github.com/google/uuid"
)

// LineItemRepository reads invoice lines. Lines are written only together
// with their invoice, inside the invoice repository's transactions.
type LineItemRepository interface {
	ListByInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) ([]models.LineItem, error)
}

type lineItemRepo struct {
	db Database
}

func NewLineItemRepository(db Database) LineItemRepository {
	return &lineItemRepo{db: db}
}

func (r *lineItemRepo) ListByInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) ([]models.LineItem, error) {
	return listLineItems(ctx, r.db, ownerID, invoiceID)
}

func listLineItems(ctx context.Context, q querier, ownerID, invoiceID uuid.UUID) ([]models.LineItem, error) {
	query := `
		SELECT li.id, li.invoice_id, li.item_id, li.position, li.description, li.quantity, li.unit_price, li.line_amount
		FROM invoice_line_items li
		JOIN invoices i ON i.id = li.invoice_id
		WHERE i.owner_id = $1 AND li.invoice_id = $2
		ORDER BY li.position
	`
	rows, err := q.Query(ctx, query, ownerID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	lines := []models.LineItem{}
	for rows.Next() {
		var line models.LineItem
		if err := rows.Scan(
			&line.ID, &line.InvoiceID, &line.ItemID, &line.Position, &line.Description,
			&line.Quantity, &line.UnitPrice, &line.LineAmount,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// insertLineItems writes lines for an invoice, assigning ids and positions.
func insertLineItems(ctx context.Context, q querier, invoiceID uuid.UUID, lines []models.LineItem) error {
	query := `
		INSERT INTO invoice_line_items (id, invoice_id, item_id, position, description, quantity, unit_price, line_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range lines {
		line := &lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.InvoiceID = invoiceID
		line.Position = i

		if _, err := q.Exec(ctx, query,
			line.ID, invoiceID, line.ItemID, line.Position, line.Description,
			line.Quantity, line.UnitPrice, line.LineAmount,
		); err != nil {
			return fmt.Errorf("failed to insert line item %d: %w", i, translateError(err))
		}
	}
	return nil
}
