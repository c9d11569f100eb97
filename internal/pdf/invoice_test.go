package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"fakti/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	d := decimal.RequireFromString
	return Document{
		Invoice: &models.Invoice{
			InvoiceNumber:   "INV-2025-00001",
			IssueDate:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			DueDate:         time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
			Currency:        "HTG",
			Status:          models.InvoiceStatusDraft,
			TaxPercent:      d("10"),
			DiscountPercent: d("5"),
			Subtotal:        d("1000"),
			TaxAmount:       d("100"),
			DiscountAmount:  d("50"),
			Total:           d("1050"),
			Notes:           "Peye nan 30 jou.",
			LineItems: []models.LineItem{
				{Description: "Consulting", Quantity: d("2"), UnitPrice: d("250"), LineAmount: d("500")},
				{Description: strings.Repeat("Long description ", 12), Quantity: d("1"), UnitPrice: d("500"), LineAmount: d("500")},
			},
		},
		Client:   &models.Client{Name: "Acme Haïti", City: "Port-au-Prince", Country: "Haiti"},
		Owner:    &models.User{Username: "marie", BusinessName: "Marie Sèvis", TaxID: "000-111"},
		Language: "ht",
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	out, err := Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRender_ManyLinesSpanPages(t *testing.T) {
	doc := sampleDocument()
	line := doc.Invoice.LineItems[0]
	for i := 0; i < 80; i++ {
		doc.Invoice.LineItems = append(doc.Invoice.LineItems, line)
	}

	out, err := Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.Count(out, []byte("/Type /Page\n")) >= 2)
}

func TestRender_WithLogo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	doc := sampleDocument()
	doc.Logo = buf.Bytes()
	doc.LogoType = "PNG"

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "/Subtype /Image")
}

func TestRender_BrokenLogoIsSkipped(t *testing.T) {
	doc := sampleDocument()
	doc.Logo = []byte("not an image")
	doc.LogoType = "PNG"

	out, err := Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "/Subtype /Image")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice_INV-2025-00001_Acme_Corp_SA.pdf", Filename("INV-2025-00001", "Acme Corp SA"))
	assert.Equal(t, "invoice_A1_Bob.pdf", Filename("A1", "Bob"))
}
