package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

const adminColumns = `id, name, email, password_hash, created_at, updated_at`

func scanAdmin(row rowScanner) (*model.Admin, error) {
	var a model.Admin
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAdminByEmail looks an administrator up by email, ignoring case.
func (s *SQLiteStorage) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	a, err := scanAdmin(s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = ?`, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admin %q: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.StoreError("query admin", err)
	}
	return a, nil
}

// GetAdmin looks an administrator up by ID.
func (s *SQLiteStorage) GetAdmin(ctx context.Context, id int64) (*model.Admin, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	a, err := scanAdmin(s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("admin", id)
	}
	if err != nil {
		return nil, common.StoreError("query admin", err)
	}
	return a, nil
}

// SaveAdmin creates the administrator with the given email or, when it already
// exists, replaces its name and password hash.
func (s *SQLiteStorage) SaveAdmin(ctx context.Context, name, email string, passwordHash []byte) (*model.Admin, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}
	if len(passwordHash) == 0 {
		return nil, fmt.Errorf("%w: passwordHash", ErrNilParameter)
	}

	email = strings.TrimSpace(email)
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at`,
		name, email, passwordHash, now, now,
	)
	if err != nil {
		return nil, common.StoreError("save admin", err)
	}

	slog.Info("saved admin", "email", email)
	return s.GetAdminByEmail(ctx, email)
}
