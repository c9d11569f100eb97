package billing

import "fmt"

// NumberPrefix starts every suggested invoice number.
const NumberPrefix = "INV"

// NextNumber suggests the invoice number for an owner's next invoice of the
// given year. existingCount is how many invoices that owner already created
// in that year. The result is only a default; any string that passes the
// per-owner uniqueness rule is a valid invoice number.
func NextNumber(year, existingCount int) string {
	return fmt.Sprintf("%s-%d-%05d", NumberPrefix, year, existingCount+1)
}
