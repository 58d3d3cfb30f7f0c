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

const fileColumns = `id, title, description, original_name, stored_path, mime_type, size_bytes, is_image, like_count, dislike_count, created_at, deleted_at`

type FileRepository struct {
	db storage.DBTX
}

func NewFileRepository(db storage.DBTX) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) CreateFile(ctx context.Context, file models.File) error {
	query := `INSERT INTO files (` + fileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		file.ID,
		file.Title,
		file.Description,
		file.OriginalName,
		file.StoredPath,
		file.MimeType,
		file.SizeBytes,
		file.IsImage,
		file.LikeCount,
		file.DislikeCount,
		file.CreatedAt,
		file.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetFile(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	file, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

func (r *FileRepository) ListFiles(ctx context.Context, includeHidden bool, limit int) ([]models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files`
	if !includeHidden {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file rows: %w", err)
	}
	return files, nil
}

func (r *FileRepository) UpdateFileInfo(ctx context.Context, id, title, description string) error {
	query := `UPDATE files SET title = $2, description = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, title, description)
	if err != nil {
		return fmt.Errorf("failed to update file info: %w", err)
	}
	return requireRow(res)
}

func (r *FileRepository) SetFileHidden(ctx context.Context, id string, hidden bool, now time.Time) error {
	var deletedAt *time.Time
	if hidden {
		deletedAt = &now
	}
	query := `UPDATE files SET deleted_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to set file hidden: %w", err)
	}
	return requireRow(res)
}

// ApplyVoteDeltas lets the database evaluate the delta arithmetic so
// concurrent votes against the same row never lose updates, and clamps
// each counter at zero. Soft-deleted rows are not updatable.
func (r *FileRepository) ApplyVoteDeltas(ctx context.Context, id string, likeDelta, dislikeDelta int64) (*models.VoteCounts, error) {
	query := `UPDATE files
		SET like_count = GREATEST(like_count + $2, 0),
		    dislike_count = GREATEST(dislike_count + $3, 0)
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING like_count, dislike_count`

	var counts models.VoteCounts
	err := r.db.QueryRowContext(ctx, query, id, likeDelta, dislikeDelta).Scan(&counts.LikeCount, &counts.DislikeCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to apply vote deltas: %w", err)
	}
	return &counts, nil
}

func (r *FileRepository) GetVoteCounts(ctx context.Context, id string) (*models.VoteCounts, error) {
	query := `SELECT like_count, dislike_count FROM files WHERE id = $1 AND deleted_at IS NULL`
	var counts models.VoteCounts
	err := r.db.QueryRowContext(ctx, query, id).Scan(&counts.LikeCount, &counts.DislikeCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get vote counts: %w", err)
	}
	return &counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Title,
		&file.Description,
		&file.OriginalName,
		&file.StoredPath,
		&file.MimeType,
		&file.SizeBytes,
		&file.IsImage,
		&file.LikeCount,
		&file.DislikeCount,
		&file.CreatedAt,
		&file.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrFileNotFound
	}
	return nil
}
