package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// CreateSession stores a newly issued session.
func (s *SQLiteStorage) CreateSession(ctx context.Context, session *model.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if err := validateString(session.ID, "session.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, admin_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		session.ID, session.AdminID, session.CreatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	if err != nil {
		return common.StoreError("create session", err)
	}
	return nil
}

// GetSession returns a session by ID, including revoked and expired ones.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var (
		session model.Session
		revoked sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, admin_id, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = ?`, id,
	).Scan(&session.ID, &session.AdminID, &session.CreatedAt, &session.ExpiresAt, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.StoreError("query session", err)
	}
	if revoked.Valid {
		session.RevokedAt = &revoked.Time
	}
	return &session, nil
}

// RevokeSession marks a session as revoked. Revoking twice is a no-op.
func (s *SQLiteStorage) RevokeSession(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return common.StoreError("revoke session", err)
	}
	return nil
}

// PurgeSessions deletes sessions that expired before cutoff.
func (s *SQLiteStorage) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, common.StoreError("purge sessions", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, common.StoreError("count purged sessions", err)
	}
	if n > 0 {
		slog.Debug("purged expired sessions", "count", n)
	}
	return n, nil
}
