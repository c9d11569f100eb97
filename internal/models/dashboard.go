package models

import "github.com/shopspring/decimal"

// DashboardStats aggregates one owner's invoices and clients.
type DashboardStats struct {
	TotalInvoices  int             `json:"total_invoices"`
	DraftCount     int             `json:"draft_count"`
	SentCount      int             `json:"sent_count"`
	PaidCount      int             `json:"paid_count"`
	OverdueCount   int             `json:"overdue_count"`
	MarkedOverdue  int             `json:"marked_overdue_count"`
	CanceledCount  int             `json:"canceled_count"`
	UnpaidCount    int             `json:"unpaid_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Revenue        decimal.Decimal `json:"revenue"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	PaymentRate    int             `json:"payment_rate"`
	TotalClients   int             `json:"total_clients"`
	RecentInvoices []*Invoice      `json:"recent_invoices"`
	RecentClients  []*Client       `json:"recent_clients"`
}
