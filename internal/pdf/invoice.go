// Package pdf renders invoices as A4 PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"fakti/internal/i18n"
	"fakti/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Document is everything printed on one invoice.
type Document struct {
	Invoice  *models.Invoice
	Client   *models.Client
	Owner    *models.User
	Logo     []byte
	LogoType string // "PNG" or "JPG"
	Language string
}

const (
	marginX = 20.0
	marginY = 20.0
	rowH    = 6.0
)

var colWidths = []float64{86, 24, 30, 30}

// Filename is the download name of an invoice PDF.
func Filename(number, clientName string) string {
	return fmt.Sprintf("invoice_%s_%s.pdf", number, strings.ReplaceAll(clientName, " ", "_"))
}

func Render(doc Document) ([]byte, error) {
	inv := doc.Invoice
	t := func(key string, args ...any) string {
		return i18n.T(doc.Language, key, args...)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(false, marginY)
	pdf.AddPage()

	headerY := marginY
	if len(doc.Logo) > 0 && drawLogo(pdf, doc.Logo, doc.LogoType) {
		headerY += 22
	}

	// Sender
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, headerY)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(100, 8, tr(doc.Owner.SenderName()))
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 8, tr(t("INVOICE")), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range nonEmpty(doc.Owner.BusinessAddress, doc.Owner.BusinessPhone, doc.Owner.Email) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	if doc.Owner.TaxID != "" {
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s: %s", t("Tax ID"), doc.Owner.TaxID)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Bill to and invoice meta side by side
	top := pdf.GetY()
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, tr(t("Bill to")), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(90, 5, tr(doc.Client.Name), "", 1, "L", false, 0, "")
	cityLine := strings.TrimSpace(strings.Trim(doc.Client.City+", "+doc.Client.Country, ", "))
	for _, line := range nonEmpty(doc.Client.Address, cityLine, doc.Client.Email, doc.Client.Phone) {
		pdf.CellFormat(90, 5, tr(line), "", 1, "L", false, 0, "")
	}
	bottom := pdf.GetY()

	meta := [][2]string{
		{t("Invoice #"), inv.InvoiceNumber},
		{t("Issue date"), inv.IssueDate.Format("2006-01-02")},
		{t("Due date"), inv.DueDate.Format("2006-01-02")},
		{t("Status"), t(string(inv.Status))},
	}
	pdf.SetY(top)
	for _, m := range meta {
		pdf.SetX(120)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, tr(m[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(35, 6, tr(m[1]), "", 1, "R", false, 0, "")
	}
	if pdf.GetY() < bottom {
		pdf.SetY(bottom)
	}
	pdf.Ln(8)

	// Line items
	tableHeader(pdf, tr, t)
	_, pageH := pdf.GetPageSize()
	pdf.SetFont("Arial", "", 10)
	for _, line := range inv.LineItems {
		lines := pdf.SplitLines([]byte(tr(line.Description)), colWidths[0]-2)
		h := rowH * float64(max(len(lines), 1))
		if pdf.GetY()+h > pageH-marginY-40 {
			pdf.AddPage()
			tableHeader(pdf, tr, t)
			pdf.SetFont("Arial", "", 10)
		}

		x, y := pdf.GetXY()
		pdf.MultiCell(colWidths[0], rowH, tr(line.Description), "1", "L", false)
		pdf.SetXY(x+colWidths[0], y)
		pdf.CellFormat(colWidths[1], h, line.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], h, money(line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], h, money(line.LineAmount), "1", 0, "R", false, 0, "")
		pdf.SetXY(x, y+h)
	}
	pdf.Ln(4)

	// Totals
	labelW := colWidths[0] + colWidths[1] + colWidths[2]
	total := func(label, value string) {
		pdf.CellFormat(labelW, rowH, tr(label), "", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], rowH, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "", 10)
	total(t("Subtotal"), money(inv.Subtotal))
	if !inv.TaxPercent.IsZero() {
		total(t("Tax (%s%%)", inv.TaxPercent.String()), money(inv.TaxAmount))
	}
	if !inv.DiscountPercent.IsZero() {
		total(t("Discount (%s%%)", inv.DiscountPercent.String()), "-"+money(inv.DiscountAmount))
	}
	pdf.SetFont("Arial", "B", 12)
	total(t("Total"), fmt.Sprintf("%s %s", money(inv.Total), inv.Currency))

	if strings.TrimSpace(inv.Notes) != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, rowH, tr(t("Notes")), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, t func(string, ...any) string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{t("Description"), t("Quantity"), t("Unit price"), t("Amount")}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)
}

// drawLogo places the logo top-left. A logo gofpdf cannot decode is skipped.
func drawLogo(pdf *gofpdf.Fpdf, data []byte, imageType string) bool {
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	info := pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(data))
	if pdf.Err() || info == nil {
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions("logo", marginX, marginY, 0, 18, false, opts, 0, "")
	return true
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
