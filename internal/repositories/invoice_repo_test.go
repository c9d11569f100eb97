package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var invoiceRowColumns = []string{
	"id", "owner_id", "client_id", "name", "invoice_number", "issue_date", "due_date", "currency",
	"status", "tax_percent", "discount_percent", "subtotal", "tax_amount", "discount_amount", "total",
	"notes", "created_at", "updated_at",
}

var lineRowColumns = []string{
	"id", "invoice_id", "item_id", "position", "description", "quantity", "unit_price", "line_amount",
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type InvoiceRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     InvoiceRepository
	ownerID1 uuid.UUID
	ownerID2 uuid.UUID
	clientID uuid.UUID
	context  context.Context
}

func (suite *InvoiceRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInvoiceRepository(mock)
	suite.ownerID1 = uuid.New()
	suite.ownerID2 = uuid.New()
	suite.clientID = uuid.New()
	suite.context = context.Background()
}

func (suite *InvoiceRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestInvoiceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceRepoTestSuite))
}

func (suite *InvoiceRepoTestSuite) newInvoice(number string) *models.Invoice {
	return &models.Invoice{
		ID:              uuid.New(),
		ClientID:        suite.clientID,
		InvoiceNumber:   number,
		IssueDate:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
		Currency:        "HTG",
		Status:          models.InvoiceStatusDraft,
		TaxPercent:      dec("10"),
		DiscountPercent: dec("0"),
		Subtotal:        dec("3500"),
		TaxAmount:       dec("350"),
		DiscountAmount:  dec("0"),
		Total:           dec("3850"),
		LineItems: []models.LineItem{
			{Description: "Design", Quantity: dec("10"), UnitPrice: dec("150"), LineAmount: dec("1500")},
			{Description: "Build", Quantity: dec("20"), UnitPrice: dec("100"), LineAmount: dec("2000")},
		},
	}
}

func (suite *InvoiceRepoTestSuite) expectInsert(ownerID uuid.UUID, inv *models.Invoice) *pgxmock.ExpectedExec {
	return suite.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices (id, owner_id, client_id, invoice_number")).
		WithArgs(inv.ID, ownerID, inv.ClientID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate,
			inv.Currency, inv.Status, inv.TaxPercent, inv.DiscountPercent, inv.Subtotal,
			inv.TaxAmount, inv.DiscountAmount, inv.Total, inv.Notes)
}

func (suite *InvoiceRepoTestSuite) expectLineInserts(inv *models.Invoice) {
	for range inv.LineItems {
		suite.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_line_items")).
			WithArgs(pgxmock.AnyArg(), inv.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

func (suite *InvoiceRepoTestSuite) TestCreate_Success() {
	inv := suite.newInvoice("INV-2025-00001")

	suite.mock.ExpectBegin()
	suite.expectInsert(suite.ownerID1, inv).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.expectLineInserts(inv)
	suite.mock.ExpectCommit()

	err := suite.repo.Create(suite.context, suite.ownerID1, inv)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.ownerID1, inv.OwnerID)
	for i, line := range inv.LineItems {
		assert.NotEqual(suite.T(), uuid.Nil, line.ID)
		assert.Equal(suite.T(), inv.ID, line.InvoiceID)
		assert.Equal(suite.T(), i, line.Position)
	}
}

func (suite *InvoiceRepoTestSuite) TestCreate_DuplicateNumberSameOwner() {
	first := suite.newInvoice("INV-2025-00001")
	second := suite.newInvoice("INV-2025-00001")

	suite.mock.ExpectBegin()
	suite.expectInsert(suite.ownerID1, first).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.expectLineInserts(first)
	suite.mock.ExpectCommit()

	suite.mock.ExpectBegin()
	suite.expectInsert(suite.ownerID1, second).WillReturnError(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: "invoices_owner_number_key",
	})
	suite.mock.ExpectRollback()

	require.NoError(suite.T(), suite.repo.Create(suite.context, suite.ownerID1, first))
	err := suite.repo.Create(suite.context, suite.ownerID1, second)

	assert.ErrorIs(suite.T(), err, ErrDuplicateIdentifier)
}

func (suite *InvoiceRepoTestSuite) TestCreate_SameNumberDifferentOwners() {
	first := suite.newInvoice("INV-2025-00001")
	second := suite.newInvoice("INV-2025-00001")

	suite.mock.ExpectBegin()
	suite.expectInsert(suite.ownerID1, first).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.expectLineInserts(first)
	suite.mock.ExpectCommit()

	suite.mock.ExpectBegin()
	suite.expectInsert(suite.ownerID2, second).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.expectLineInserts(second)
	suite.mock.ExpectCommit()

	assert.NoError(suite.T(), suite.repo.Create(suite.context, suite.ownerID1, first))
	assert.NoError(suite.T(), suite.repo.Create(suite.context, suite.ownerID2, second))
}

func (suite *InvoiceRepoTestSuite) TestCreate_LineInsertFailureRollsBack() {
	inv := suite.newInvoice("INV-2025-00002")

	suite.mock.ExpectBegin()
	suite.expectInsert(suite.ownerID1, inv).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_line_items")).
		WithArgs(pgxmock.AnyArg(), inv.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "invoice_line_items_item_id_fkey"})
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, suite.ownerID1, inv)

	assert.ErrorIs(suite.T(), err, ErrItemNotOwned)
}

func (suite *InvoiceRepoTestSuite) TestGetByID_Success() {
	id := uuid.New()
	issue := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	created := time.Now()
	itemID := uuid.New()

	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE i.owner_id = $1 AND i.id = $2")).
		WithArgs(suite.ownerID1, id).
		WillReturnRows(pgxmock.NewRows(invoiceRowColumns).AddRow(
			id, suite.ownerID1, suite.clientID, "Bob Co", "INV-2025-00001", issue, issue.AddDate(0, 0, 30), "HTG",
			models.InvoiceStatusSent, dec("10"), dec("5"), dec("1000"), dec("100"), dec("50"), dec("1050"),
			"thanks", created, created,
		))
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM invoice_line_items li")).
		WithArgs(suite.ownerID1, id).
		WillReturnRows(pgxmock.NewRows(lineRowColumns).AddRow(
			uuid.New(), id, &itemID, 0, "Consulting", dec("1"), dec("1000"), dec("1000"),
		))

	inv, err := suite.repo.GetByID(suite.context, suite.ownerID1, id)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Bob Co", inv.ClientName)
	assert.Equal(suite.T(), models.InvoiceStatusSent, inv.Status)
	assert.True(suite.T(), inv.Total.Equal(dec("1050")))
	require.Len(suite.T(), inv.LineItems, 1)
	assert.Equal(suite.T(), itemID, *inv.LineItems[0].ItemID)
}

func (suite *InvoiceRepoTestSuite) TestGetByID_OtherOwnerIsNotFound() {
	id := uuid.New()

	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE i.owner_id = $1 AND i.id = $2")).
		WithArgs(suite.ownerID2, id).
		WillReturnError(pgx.ErrNoRows)

	inv, err := suite.repo.GetByID(suite.context, suite.ownerID2, id)

	assert.Nil(suite.T(), inv)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *InvoiceRepoTestSuite) TestUpdate_ReplacesLineItems() {
	inv := suite.newInvoice("INV-2025-00003")

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices")).
		WithArgs(suite.ownerID1, inv.ID, inv.ClientID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate,
			inv.Currency, inv.Status, inv.TaxPercent, inv.DiscountPercent, inv.Subtotal,
			inv.TaxAmount, inv.DiscountAmount, inv.Total, inv.Notes).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoice_line_items WHERE invoice_id = $1")).
		WithArgs(inv.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.expectLineInserts(inv)
	suite.mock.ExpectCommit()

	assert.NoError(suite.T(), suite.repo.Update(suite.context, suite.ownerID1, inv))
}

func (suite *InvoiceRepoTestSuite) TestUpdate_NotFound() {
	inv := suite.newInvoice("INV-2025-00003")

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices")).
		WithArgs(suite.ownerID2, inv.ID, inv.ClientID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate,
			inv.Currency, inv.Status, inv.TaxPercent, inv.DiscountPercent, inv.Subtotal,
			inv.TaxAmount, inv.DiscountAmount, inv.Total, inv.Notes).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	assert.ErrorIs(suite.T(), suite.repo.Update(suite.context, suite.ownerID2, inv), ErrNotFound)
}

func (suite *InvoiceRepoTestSuite) TestMarkSentIfDraft() {
	id := uuid.New()
	query := regexp.QuoteMeta("WHERE owner_id = $1 AND id = $2 AND status = $4")

	suite.mock.ExpectExec(query).
		WithArgs(suite.ownerID1, id, models.InvoiceStatusSent, models.InvoiceStatusDraft).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(query).
		WithArgs(suite.ownerID1, id, models.InvoiceStatusSent, models.InvoiceStatusDraft).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	moved, err := suite.repo.MarkSentIfDraft(suite.context, suite.ownerID1, id)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), moved)

	moved, err = suite.repo.MarkSentIfDraft(suite.context, suite.ownerID1, id)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), moved)
}

func (suite *InvoiceRepoTestSuite) TestUpdateStatus_NotFound() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = $3")).
		WithArgs(suite.ownerID1, id, models.InvoiceStatusPaid).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateStatus(suite.context, suite.ownerID1, id, models.InvoiceStatusPaid)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *InvoiceRepoTestSuite) TestDelete() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoices WHERE owner_id = $1 AND id = $2")).
		WithArgs(suite.ownerID1, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoices WHERE owner_id = $1 AND id = $2")).
		WithArgs(suite.ownerID2, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(suite.T(), suite.repo.Delete(suite.context, suite.ownerID1, id))
	assert.ErrorIs(suite.T(), suite.repo.Delete(suite.context, suite.ownerID2, id), ErrNotFound)
}

func (suite *InvoiceRepoTestSuite) TestList_WithFilters() {
	status := models.InvoiceStatusSent
	clientID := suite.clientID
	filter := models.InvoiceFilter{Status: &status, ClientID: &clientID, Search: "INV", Limit: 10, Offset: 20}
	created := time.Now()

	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM invoices i JOIN clients c")).
		WithArgs(suite.ownerID1, status, clientID, "%INV%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(21))
	suite.mock.ExpectQuery(regexp.QuoteMeta("ORDER BY i.created_at DESC LIMIT $5 OFFSET $6")).
		WithArgs(suite.ownerID1, status, clientID, "%INV%", 10, 20).
		WillReturnRows(pgxmock.NewRows(invoiceRowColumns).AddRow(
			uuid.New(), suite.ownerID1, clientID, "Bob Co", "INV-2025-00021", created, created, "HTG",
			models.InvoiceStatusSent, dec("0"), dec("0"), dec("10"), dec("0"), dec("0"), dec("10"),
			"", created, created,
		))

	invoices, total, err := suite.repo.List(suite.context, suite.ownerID1, filter)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 21, total)
	require.Len(suite.T(), invoices, 1)
	assert.Equal(suite.T(), "INV-2025-00021", invoices[0].InvoiceNumber)
}

func (suite *InvoiceRepoTestSuite) TestNumberExists_ExcludesCurrentInvoice() {
	current := uuid.New()
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(suite.ownerID1, "INV-2025-00001", &current).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(suite.ownerID1, "INV-2025-00001", (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := suite.repo.NumberExists(suite.context, suite.ownerID1, "INV-2025-00001", &current)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), exists)

	exists, err = suite.repo.NumberExists(suite.context, suite.ownerID1, "INV-2025-00001", nil)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}

func (suite *InvoiceRepoTestSuite) TestCountCreatedInYear() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("EXTRACT(YEAR FROM created_at) = $2")).
		WithArgs(suite.ownerID1, 2025).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(6))

	count, err := suite.repo.CountCreatedInYear(suite.context, suite.ownerID1, 2025)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 6, count)
}

func (suite *InvoiceRepoTestSuite) TestStats() {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	suite.mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE due_date < $2 AND status IN ('sent', 'draft'))")).
		WithArgs(suite.ownerID1, today).
		WillReturnRows(pgxmock.NewRows([]string{
			"total", "draft", "sent", "paid", "overdue", "canceled", "unpaid", "computed_overdue",
			"amount", "revenue", "outstanding",
		}).AddRow(10, 2, 3, 4, 1, 0, 6, 2, dec("5000"), dec("2000"), dec("3000")))

	stats, err := suite.repo.Stats(suite.context, suite.ownerID1, today)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 10, stats.TotalInvoices)
	assert.Equal(suite.T(), 4, stats.PaidCount)
	assert.Equal(suite.T(), 1, stats.MarkedOverdue)
	assert.Equal(suite.T(), 2, stats.OverdueCount)
	assert.Equal(suite.T(), 6, stats.UnpaidCount)
	assert.True(suite.T(), stats.Revenue.Equal(dec("2000")))
	assert.True(suite.T(), stats.Outstanding.Equal(dec("3000")))
}

func (suite *InvoiceRepoTestSuite) TestStats_QueryError() {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	connErr := errors.New("connection reset")
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM invoices")).
		WithArgs(suite.ownerID1, today).
		WillReturnError(connErr)

	stats, err := suite.repo.Stats(suite.context, suite.ownerID1, today)
	assert.Nil(suite.T(), stats)
	assert.ErrorIs(suite.T(), err, connErr)
	assert.Contains(suite.T(), err.Error(), "failed to aggregate invoices")
}
