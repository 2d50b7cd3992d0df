package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					account_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					merchant_name TEXT,
					description TEXT,
					currency TEXT,
					category TEXT,
					amount REAL NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_account_date ON transactions(account_id, date)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_name)`,

				`CREATE TABLE IF NOT EXISTS confirmations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					merchant_key TEXT NOT NULL,
					transaction_id TEXT,
					category TEXT NOT NULL,
					subcategory TEXT,
					confirmed_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_confirmations_merchant ON confirmations(merchant_key)`,

				`CREATE TABLE IF NOT EXISTS suggestions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					rule_key TEXT NOT NULL,
					merchant_name TEXT,
					category TEXT NOT NULL,
					priority TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'ACTIVE',
					explanation TEXT,
					action_steps TEXT,
					potential_savings REAL NOT NULL DEFAULT 0,
					monthly_savings REAL NOT NULL DEFAULT 0,
					confidence REAL NOT NULL DEFAULT 0,
					score REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					acted_at DATETIME,
					UNIQUE(account_id, rule_key)
				)`,
				`CREATE INDEX idx_suggestions_account_status ON suggestions(account_id, status)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("migration 1 failed: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Usage signals",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS usage_signals (
					merchant_key TEXT PRIMARY KEY,
					frequency TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("migration 2 failed: %w", err)
				}
			}
			return nil
		},
	},
}

// runMigrations applies any pending migrations inside transactions.
func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}
