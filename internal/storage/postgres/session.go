package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/storage"
)

type SessionRepository struct {
	db storage.DBTX
}

func NewSessionRepository(db storage.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, session models.Session) error {
	query := `INSERT INTO admin_sessions (id, refresh_token_hash, created_at, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.RefreshTokenHash,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	query := `SELECT id, refresh_token_hash, created_at, expires_at, revoked_at, last_used_at FROM admin_sessions WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.RefreshTokenHash,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// RevokeSession ends a session without rotation (explicit logout). The row
// stays behind as an audit record.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE admin_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// markRotated records a successful refresh against the old session.
func (r *SessionRepository) markRotated(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE admin_sessions SET revoked_at = $2, last_used_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to mark session rotated: %w", err)
	}
	return nil
}

// RotateSession on the bare repository exists to satisfy the interface for
// single-connection use; the transactional variant on Storage supersedes it.
func (r *SessionRepository) RotateSession(ctx context.Context, oldID string, now time.Time, next models.Session) error {
	if err := r.markRotated(ctx, oldID, now); err != nil {
		return err
	}
	return r.CreateSession(ctx, next)
}
