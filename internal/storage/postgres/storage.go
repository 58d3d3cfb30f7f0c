package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ryabkov/filegallery/internal/models"
)

type Storage struct {
	db *sql.DB
	*SessionRepository
	*FileRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                db,
		SessionRepository: NewSessionRepository(db),
		FileRepository:    NewFileRepository(db),
	}
}

// RotateSession revokes the old session and inserts its successor in one
// transaction, so a crash between the two steps can never leave both the
// old and the new refresh token usable.
func (s *Storage) RotateSession(ctx context.Context, oldID string, now time.Time, next models.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessionRepoTx := NewSessionRepository(tx)

	if err := sessionRepoTx.markRotated(ctx, oldID, now); err != nil {
		return fmt.Errorf("failed to revoke session in tx: %w", err)
	}

	if err := sessionRepoTx.CreateSession(ctx, next); err != nil {
		return fmt.Errorf("failed to create new session in tx: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
