package billing

import (
	"time"

	"fakti/internal/models"
)

// IsOverdue reports whether an invoice counts as overdue on the given day:
// its due date is strictly before today and it is still draft or sent.
// Only calendar dates are compared.
func IsOverdue(dueDate time.Time, status models.InvoiceStatus, today time.Time) bool {
	if status != models.InvoiceStatusSent && status != models.InvoiceStatusDraft {
		return false
	}
	return dateOnly(dueDate).Before(dateOnly(today))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
