package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var clientRowColumns = []string{
	"id", "owner_id", "name", "email", "phone", "address", "city", "country", "notes", "created_at", "updated_at",
}

type ClientRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ClientRepository
	ownerID uuid.UUID
	context context.Context
}

func (suite *ClientRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewClientRepository(mock)
	suite.ownerID = uuid.New()
	suite.context = context.Background()
}

func (suite *ClientRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestClientRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ClientRepoTestSuite))
}

func (suite *ClientRepoTestSuite) TestCreate_SetsOwnerAndTimestamps() {
	now := time.Now()
	client := &models.Client{ID: uuid.New(), Name: "Acme", Email: "billing@acme.ht", Country: "Haiti"}

	suite.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO clients")).
		WithArgs(client.ID, suite.ownerID, "Acme", "billing@acme.ht", "", "", "", "Haiti", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := suite.repo.Create(suite.context, suite.ownerID, client)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.ownerID, client.OwnerID)
	assert.Equal(suite.T(), now, client.CreatedAt)
}

func (suite *ClientRepoTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE owner_id = $1 AND id = $2")).
		WithArgs(suite.ownerID, id).
		WillReturnError(pgx.ErrNoRows)

	client, err := suite.repo.GetByID(suite.context, suite.ownerID, id)

	assert.Nil(suite.T(), client)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ClientRepoTestSuite) TestDelete_ReferencedByInvoices() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients")).
		WithArgs(suite.ownerID, id).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "invoices_client_id_fkey"})

	err := suite.repo.Delete(suite.context, suite.ownerID, id)

	assert.ErrorIs(suite.T(), err, ErrClientInUse)
}

func (suite *ClientRepoTestSuite) TestDelete_NotFound() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients")).
		WithArgs(suite.ownerID, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(suite.T(), suite.repo.Delete(suite.context, suite.ownerID, id), ErrNotFound)
}

func (suite *ClientRepoTestSuite) TestUpdate_Success() {
	client := &models.Client{ID: uuid.New(), Name: "Acme SA", City: "Cap-Haitien"}
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE clients")).
		WithArgs(suite.ownerID, client.ID, "Acme SA", "", "", "", "Cap-Haitien", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.Update(suite.context, suite.ownerID, client))
}

func (suite *ClientRepoTestSuite) TestList_SearchAndPaging() {
	now := time.Now()
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clients WHERE owner_id = $1 AND (name ILIKE $2")).
		WithArgs(suite.ownerID, "%acme%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	suite.mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name, created_at LIMIT $3 OFFSET $4")).
		WithArgs(suite.ownerID, "%acme%", 20, 0).
		WillReturnRows(pgxmock.NewRows(clientRowColumns).AddRow(
			uuid.New(), suite.ownerID, "Acme", "a@acme.ht", "", "", "", "Haiti", "", now, now,
		))

	clients, total, err := suite.repo.List(suite.context, suite.ownerID, "acme", 20, 0)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, total)
	require.Len(suite.T(), clients, 1)
	assert.Equal(suite.T(), "Acme", clients[0].Name)
}

func (suite *ClientRepoTestSuite) TestRecentAndCount() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2")).
		WithArgs(suite.ownerID, 5).
		WillReturnRows(pgxmock.NewRows(clientRowColumns))
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clients WHERE owner_id = $1")).
		WithArgs(suite.ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	recent, err := suite.repo.Recent(suite.context, suite.ownerID, 5)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), recent)

	count, err := suite.repo.Count(suite.context, suite.ownerID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, count)
}
