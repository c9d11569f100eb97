package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"fakti/internal/models"
	"fakti/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the migrations. The
// pool is closed when the test ends; the test is skipped when no database is
// configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if _, err := database.Migrate(ctx, pool, database.Migrations); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	testDB := &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
	t.Cleanup(func() { _ = testDB.Cleanup() })
	return testDB
}

// SetupTestUser inserts a user. Deleting it removes everything it owns.
func SetupTestUser(t *testing.T, db *TestDB) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Username:     "user-" + uuid.NewString()[:8],
		Email:        "owner@example.com",
		PasswordHash: "x",
		Language:     "en",
	}
	query := `
		INSERT INTO users (id, username, email, password_hash, language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, user.ID, user.Username, user.Email, user.PasswordHash, user.Language)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

// SetupTestClient inserts a client owned by ownerID.
func SetupTestClient(t *testing.T, db *TestDB, ownerID uuid.UUID) *models.Client {
	t.Helper()

	client := &models.Client{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "Test Client",
		Email:   "client@example.com",
		Country: "Haiti",
	}
	query := `
		INSERT INTO clients (id, owner_id, name, email, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, client.ID, ownerID, client.Name, client.Email, client.Country)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	return client
}

// NewTestInvoice builds an unsaved draft with one line and fresh totals.
func NewTestInvoice(clientID uuid.UUID, number string) *models.Invoice {
	issue := time.Now().UTC().Truncate(24 * time.Hour)
	return &models.Invoice{
		ID:            uuid.New(),
		ClientID:      clientID,
		InvoiceNumber: number,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		Currency:      "HTG",
		Status:        models.InvoiceStatusDraft,
		TaxPercent:    decimal.RequireFromString("10"),
		Subtotal:      decimal.RequireFromString("100.00"),
		TaxAmount:     decimal.RequireFromString("10.00"),
		Total:         decimal.RequireFromString("110.00"),
		LineItems: []models.LineItem{{
			Description: "Consulting",
			Quantity:    decimal.RequireFromString("2"),
			UnitPrice:   decimal.RequireFromString("50"),
			LineAmount:  decimal.RequireFromString("100.00"),
		}},
	}
}
