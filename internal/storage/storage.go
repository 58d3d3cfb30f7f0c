package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ryabkov/filegallery/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrFileNotFound    = errors.New("file not found")
)

// DBTX lets repositories run on either *sql.DB or *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, now time.Time) error
	// RotateSession atomically revokes the old session (setting revoked_at
	// and last_used_at to now) and inserts its successor.
	RotateSession(ctx context.Context, oldID string, now time.Time, next models.Session) error
}

type FileRepository interface {
	CreateFile(ctx context.Context, file models.File) error
	// GetFile returns the row regardless of its soft-delete state; callers
	// decide whether hidden rows are visible to them.
	GetFile(ctx context.Context, id string) (*models.File, error)
	// ListFiles returns rows newest first. With includeHidden false,
	// soft-deleted rows are filtered out. limit <= 0 means no limit.
	ListFiles(ctx context.Context, includeHidden bool, limit int) ([]models.File, error)
	UpdateFileInfo(ctx context.Context, id, title, description string) error
	SetFileHidden(ctx context.Context, id string, hidden bool, now time.Time) error
	// ApplyVoteDeltas adds the deltas to the counters in a single statement,
	// clamping each counter at zero. Missing or soft-deleted rows yield
	// ErrFileNotFound.
	ApplyVoteDeltas(ctx context.Context, id string, likeDelta, dislikeDelta int64) (*models.VoteCounts, error)
	// GetVoteCounts reads the counters of a visible file without writing.
	GetVoteCounts(ctx context.Context, id string) (*models.VoteCounts, error)
}

type Storage interface {
	SessionRepository
	FileRepository
}
