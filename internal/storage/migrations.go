package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS customers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					phone TEXT,
					address TEXT,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_customers_name ON customers(name COLLATE NOCASE)`,

				`CREATE TABLE IF NOT EXISTS debits (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					customer_id INTEGER NOT NULL,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					date TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_debits_customer_date ON debits(customer_id, date)`,

				`CREATE TABLE IF NOT EXISTS payments (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					customer_id INTEGER NOT NULL,
					description TEXT,
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					date TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_payments_customer_date ON payments(customer_id, date)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add administrators and sessions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS admins (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE COLLATE NOCASE,
					password_hash BLOB NOT NULL,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS sessions (
					id TEXT PRIMARY KEY,
					admin_id INTEGER NOT NULL,
					created_at DATETIME NOT NULL,
					expires_at DATETIME NOT NULL,
					revoked_at DATETIME,
					FOREIGN KEY (admin_id) REFERENCES admins(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_sessions_expires_at ON sessions(expires_at)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add backup metadata table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS backup_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER
				)`,
			})
		},
	},
}

// SchemaVersion returns the schema version currently applied to the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
