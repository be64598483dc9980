package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// RunMigrations creates the audit journal tables.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS warikan_participants (
			group_id TEXT NOT NULL,
			participant_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (group_id, participant_id)
		);
		CREATE TABLE IF NOT EXISTS warikan_expenses (
			id UUID PRIMARY KEY,
			group_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			paid_by TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_warikan_expenses_group_id ON warikan_expenses(group_id);
		CREATE TABLE IF NOT EXISTS warikan_expense_splits (
			expense_id UUID NOT NULL REFERENCES warikan_expenses(id) ON DELETE CASCADE,
			position INT NOT NULL,
			participant_id TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			percent NUMERIC,
			PRIMARY KEY (expense_id, position)
		);
		CREATE TABLE IF NOT EXISTS warikan_payments (
			id UUID PRIMARY KEY,
			group_id TEXT NOT NULL,
			paid_by TEXT NOT NULL,
			paid_to TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			settled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_warikan_payments_group_id ON warikan_payments(group_id);

		ALTER TABLE warikan_expenses ALTER COLUMN amount TYPE NUMERIC;
		ALTER TABLE warikan_expense_splits ALTER COLUMN amount TYPE NUMERIC;
		ALTER TABLE warikan_expense_splits ALTER COLUMN percent TYPE NUMERIC;
		ALTER TABLE warikan_payments ALTER COLUMN amount TYPE NUMERIC;
	`)
	return err
}
