package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "draft"
	InvoiceStatusSent     InvoiceStatus = "sent"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusOverdue  InvoiceStatus = "overdue"
	InvoiceStatusCanceled InvoiceStatus = "canceled"
)

// InvoiceStatuses lists every status in display order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCanceled,
}

// IsValid reports whether s is one of the known statuses.
func (s InvoiceStatus) IsValid() bool {
	for _, known := range InvoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OwnerID         uuid.UUID       `json:"owner_id" db:"owner_id"`
	ClientID        uuid.UUID       `json:"client_id" db:"client_id"`
	ClientName      string          `json:"client_name,omitempty" db:"-"`
	InvoiceNumber   string          `json:"invoice_number" db:"invoice_number"`
	IssueDate       time.Time       `json:"issue_date" db:"issue_date"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	Currency        string          `json:"currency" db:"currency"`
	Status          InvoiceStatus   `json:"status" db:"status"`
	TaxPercent      decimal.Decimal `json:"tax_percent" db:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Notes           string          `json:"notes" db:"notes"`
	IsOverdue       bool            `json:"is_overdue" db:"-"`
	LineItems       []LineItem      `json:"line_items,omitempty" db:"-"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// LineItem is one billable row of an invoice.
type LineItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty" db:"item_id"`
	Position    int             `json:"position" db:"position"`
	Description string          `json:"description" db:"description"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineAmount  decimal.Decimal `json:"line_amount" db:"line_amount"`
}

// InvoiceFilter narrows an owner's invoice listing.
type InvoiceFilter struct {
	Status   *InvoiceStatus
	ClientID *uuid.UUID
	Search   string
	Limit    int
	Offset   int
}
