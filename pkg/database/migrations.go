package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrator is the subset of a pool needed to apply migrations.
type Migrator interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migration is one forward-only schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations are applied in slice order; versions must only ever be appended.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "users",
		SQL: `
			CREATE TABLE users (
				id               UUID PRIMARY KEY,
				username         VARCHAR(150) NOT NULL,
				email            VARCHAR(254) NOT NULL DEFAULT '',
				password_hash    TEXT NOT NULL,
				first_name       VARCHAR(150) NOT NULL DEFAULT '',
				last_name        VARCHAR(150) NOT NULL DEFAULT '',
				business_name    VARCHAR(200) NOT NULL DEFAULT '',
				business_address TEXT NOT NULL DEFAULT '',
				business_phone   VARCHAR(50) NOT NULL DEFAULT '',
				tax_id           VARCHAR(50) NOT NULL DEFAULT '',
				language         VARCHAR(8) NOT NULL DEFAULT 'en',
				logo_key         TEXT,
				last_login_at    TIMESTAMPTZ,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT users_username_key UNIQUE (username)
			);
			CREATE INDEX users_email_idx ON users (LOWER(email));
		`,
	},
	{
		Version:     2,
		Description: "clients and catalog items",
		SQL: `
			CREATE TABLE clients (
				id         UUID PRIMARY KEY,
				owner_id   UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				name       VARCHAR(200) NOT NULL,
				email      VARCHAR(254) NOT NULL DEFAULT '',
				phone      VARCHAR(50) NOT NULL DEFAULT '',
				address    TEXT NOT NULL DEFAULT '',
				city       VARCHAR(100) NOT NULL DEFAULT '',
				country    VARCHAR(100) NOT NULL DEFAULT 'Haiti',
				notes      TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX clients_owner_name_idx ON clients (owner_id, name);

			CREATE TABLE items (
				id          UUID PRIMARY KEY,
				owner_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				name        VARCHAR(200) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				unit_price  NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (unit_price >= 0),
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX items_owner_name_idx ON items (owner_id, name);
		`,
	},
	{
		Version:     3,
		Description: "invoices and line items",
		SQL: `
			CREATE TABLE invoices (
				id               UUID PRIMARY KEY,
				owner_id         UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				client_id        UUID NOT NULL,
				invoice_number   VARCHAR(50) NOT NULL,
				issue_date       DATE NOT NULL,
				due_date         DATE NOT NULL,
				currency         VARCHAR(3) NOT NULL DEFAULT 'HTG',
				status           VARCHAR(20) NOT NULL DEFAULT 'draft'
					CHECK (status IN ('draft', 'sent', 'paid', 'overdue', 'canceled')),
				tax_percent      NUMERIC(5, 2) NOT NULL DEFAULT 0,
				discount_percent NUMERIC(5, 2) NOT NULL DEFAULT 0,
				subtotal         NUMERIC(12, 2) NOT NULL DEFAULT 0,
				tax_amount       NUMERIC(12, 2) NOT NULL DEFAULT 0,
				discount_amount  NUMERIC(12, 2) NOT NULL DEFAULT 0,
				total            NUMERIC(12, 2) NOT NULL DEFAULT 0,
				notes            TEXT NOT NULL DEFAULT '',
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT invoices_client_id_fkey FOREIGN KEY (client_id) REFERENCES clients (id),
				CONSTRAINT invoices_owner_number_key UNIQUE (owner_id, invoice_number)
			);
			CREATE INDEX invoices_owner_status_idx ON invoices (owner_id, status);
			CREATE INDEX invoices_owner_created_idx ON invoices (owner_id, created_at DESC);

			CREATE TABLE invoice_line_items (
				id          UUID PRIMARY KEY,
				invoice_id  UUID NOT NULL REFERENCES invoices (id) ON DELETE CASCADE,
				item_id     UUID,
				position    INTEGER NOT NULL DEFAULT 0,
				description VARCHAR(255) NOT NULL,
				quantity    NUMERIC(10, 2) NOT NULL CHECK (quantity >= 0),
				unit_price  NUMERIC(10, 2) NOT NULL CHECK (unit_price >= 0),
				line_amount NUMERIC(12, 2) NOT NULL,
				CONSTRAINT invoice_line_items_item_id_fkey FOREIGN KEY (item_id)
					REFERENCES items (id) ON DELETE SET NULL
			);
			CREATE INDEX invoice_line_items_invoice_idx ON invoice_line_items (invoice_id, position);
		`,
	},
	{
		Version:     4,
		Description: "password reset tokens",
		SQL: `
			CREATE TABLE password_reset_tokens (
				id         UUID PRIMARY KEY,
				user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				token_hash VARCHAR(64) NOT NULL UNIQUE,
				expires_at TIMESTAMPTZ NOT NULL,
				used_at    TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX password_reset_tokens_expires_idx ON password_reset_tokens (expires_at);
		`,
	},
}

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Migrate applies every migration newer than the recorded schema version,
// each in its own transaction. It returns the versions it applied.
func Migrate(ctx context.Context, db Migrator, migrations []Migration) ([]int, error) {
	if _, err := db.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func apply(ctx context.Context, db Migrator, m Migration) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
