// Package reports builds spreadsheet exports of an owner's invoices.
package reports

import (
	"bytes"
	"fmt"

	"fakti/internal/common"
	"fakti/internal/i18n"
	"fakti/internal/models"

	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	invoiceHeadings = []string{
		"Number", "Client", "Issue date", "Due date", "Status", "Currency",
		"Subtotal", "Tax", "Discount", "Total",
	}
	lineHeadings = []string{"Number", "Description", "Quantity", "Unit price", "Amount"}
)

// InvoiceWorkbook writes one sheet of invoice headers and one sheet of their
// line items. Money cells are numbers so that spreadsheet sums work.
func InvoiceWorkbook(invoices []*models.Invoice, lang string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	invoiceSheet := i18n.T(lang, "Invoices")
	lineSheet := i18n.T(lang, "Line items")

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(lineSheet); err != nil {
		return nil, err
	}

	if err := writeHeadings(f, invoiceSheet, invoiceHeadings, lang); err != nil {
		return nil, err
	}
	if err := writeHeadings(f, lineSheet, lineHeadings, lang); err != nil {
		return nil, err
	}

	lineRow := 2
	for i, inv := range invoices {
		values := []interface{}{
			inv.InvoiceNumber,
			inv.ClientName,
			inv.IssueDate.Format(common.DateLayout),
			inv.DueDate.Format(common.DateLayout),
			i18n.T(lang, string(inv.Status)),
			inv.Currency,
			inv.Subtotal.InexactFloat64(),
			inv.TaxAmount.InexactFloat64(),
			inv.DiscountAmount.InexactFloat64(),
			inv.Total.InexactFloat64(),
		}
		if err := writeRow(f, invoiceSheet, i+2, values); err != nil {
			return nil, err
		}

		for _, line := range inv.LineItems {
			values := []interface{}{
				inv.InvoiceNumber,
				line.Description,
				line.Quantity.InexactFloat64(),
				line.UnitPrice.InexactFloat64(),
				line.LineAmount.InexactFloat64(),
			}
			if err := writeRow(f, lineSheet, lineRow, values); err != nil {
				return nil, err
			}
			lineRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeadings(f *excelize.File, sheet string, headings []string, lang string) error {
	translated := make([]interface{}, len(headings))
	for i, h := range headings {
		translated[i] = i18n.T(lang, h)
	}
	return writeRow(f, sheet, 1, translated)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
