package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name", "business_name",
	"business_address", "business_phone", "tax_id", "language", "logo_key", "last_login_at",
	"created_at", "updated_at",
}

type UserRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	users   UserRepository
	items   ItemRepository
	resets  PasswordResetRepository
	context context.Context
}

func (suite *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.users = NewUserRepository(mock)
	suite.items = NewItemRepository(mock)
	suite.resets = NewPasswordResetRepository(mock)
	suite.context = context.Background()
}

func (suite *UserRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func (suite *UserRepoTestSuite) TestCreate_DuplicateUsername() {
	user := &models.User{ID: uuid.New(), Username: "marie", Email: "marie@example.ht", PasswordHash: "hash", Language: "ht"}

	suite.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, "marie", "marie@example.ht", "hash", "", "", "", "", "", "", "ht").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := suite.users.Create(suite.context, user)

	assert.ErrorIs(suite.T(), err, ErrDuplicateUsername)
}

func (suite *UserRepoTestSuite) TestListByEmail_MatchesSeveralAccounts() {
	now := time.Now()
	logo := "logos/a.png"
	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Shared@Example.ht").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(uuid.New(), "one", "shared@example.ht", "h1", "", "", "", "", "", "", "en", &logo, (*time.Time)(nil), now, now).
			AddRow(uuid.New(), "two", "shared@example.ht", "h2", "", "", "", "", "", "", "ht", (*string)(nil), &now, now, now))

	users, err := suite.users.ListByEmail(suite.context, "Shared@Example.ht")

	require.NoError(suite.T(), err)
	require.Len(suite.T(), users, 2)
	assert.Equal(suite.T(), "logos/a.png", *users[0].LogoKey)
	assert.Nil(suite.T(), users[1].LogoKey)
	assert.NotNil(suite.T(), users[1].LastLoginAt)
}

func (suite *UserRepoTestSuite) TestUpdatePassword_NotFound() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $2")).
		WithArgs(id, "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(suite.T(), suite.users.UpdatePassword(suite.context, id, "newhash"), ErrNotFound)
}

func (suite *UserRepoTestSuite) TestDelete() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(suite.T(), suite.users.Delete(suite.context, id))
}

func (suite *UserRepoTestSuite) TestItemGetMany_ScopedToOwner() {
	ownerID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	now := time.Now()

	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1 AND id = ANY($2)")).
		WithArgs(ownerID, ids).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "description", "unit_price", "created_at", "updated_at"}).
			AddRow(ids[0], ownerID, "Hosting", "", decimal.RequireFromString("25.00"), now, now))

	items, err := suite.items.GetMany(suite.context, ownerID, ids)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), ids[0], items[0].ID)
}

func (suite *UserRepoTestSuite) TestItemGetMany_EmptyIDsSkipsQuery() {
	items, err := suite.items.GetMany(suite.context, uuid.New(), nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), items)
}

func (suite *UserRepoTestSuite) TestPasswordReset_GetValidAndMarkUsed() {
	now := time.Now()
	token := uuid.New()
	userID := uuid.New()

	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2")).
		WithArgs("abc", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "used_at", "created_at"}).
			AddRow(token, userID, "abc", now.Add(time.Hour), (*time.Time)(nil), now))
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1")).
		WithArgs(token, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	found, err := suite.resets.GetValid(suite.context, "abc", now)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), userID, found.UserID)
	assert.Nil(suite.T(), found.UsedAt)

	assert.NoError(suite.T(), suite.resets.MarkUsed(suite.context, found.ID, now))
}

func (suite *UserRepoTestSuite) TestPasswordReset_PurgeExpired() {
	now := time.Now()
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM password_reset_tokens")).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	purged, err := suite.resets.PurgeExpired(suite.context, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), purged)
}
