package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/filestore"
	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/storage"
)

var ErrInvalidVote = errors.New("invalid vote value")

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

//nolint:gochecknoglobals // fixed policy table
var imageMimeTypes = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/webp":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

type GalleryService struct {
	files storage.FileRepository
	blobs *filestore.Store
	log   *zap.SugaredLogger
}

func NewGalleryService(files storage.FileRepository, blobs *filestore.Store, log *zap.SugaredLogger) *GalleryService {
	return &GalleryService{
		files: files,
		blobs: blobs,
		log:   log,
	}
}

// ListVisible returns non-hidden files, newest first. The limit is
// defaulted and capped the way the public listing always behaved.
func (s *GalleryService) ListVisible(ctx context.Context, limit int) ([]models.File, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.files.ListFiles(ctx, false, limit)
}

// ListAll is the admin listing; hidden files are included.
func (s *GalleryService) ListAll(ctx context.Context) ([]models.File, error) {
	return s.files.ListFiles(ctx, true, 0)
}

// GetMetadata returns a file row regardless of its hidden state (admin).
func (s *GalleryService) GetMetadata(ctx context.Context, id string) (*models.File, error) {
	return s.files.GetFile(ctx, id)
}

// OpenContent returns the metadata and a reader over the stored bytes for
// a visible file. Hidden files are indistinguishable from missing ones.
func (s *GalleryService) OpenContent(ctx context.Context, id string) (*models.File, io.ReadCloser, error) {
	file, err := s.files.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if file.Hidden() {
		return nil, nil, storage.ErrFileNotFound
	}

	content, err := s.blobs.Open(file.StoredPath)
	if err != nil {
		if errors.Is(err, filestore.ErrContentNotFound) {
			s.log.Errorw("metadata points at missing content", "file_id", file.ID, "stored_path", file.StoredPath)
			return nil, nil, storage.ErrFileNotFound
		}
		return nil, nil, err
	}
	return file, content, nil
}

func (s *GalleryService) UpdateInfo(ctx context.Context, id, title, description string) error {
	return s.files.UpdateFileInfo(ctx, id, title, description)
}

func (s *GalleryService) Hide(ctx context.Context, id string) error {
	return s.files.SetFileHidden(ctx, id, true, time.Now().UTC())
}

func (s *GalleryService) Restore(ctx context.Context, id string) error {
	return s.files.SetFileHidden(ctx, id, false, time.Now().UTC())
}

// Upload stores one uploaded file: bytes first, metadata row second, so a
// reader can never observe a row pointing at unflushed content.
func (s *GalleryService) Upload(ctx context.Context, originalName, contentType string, r io.Reader) (*models.File, error) {
	fileID := uuid.NewString()
	safeName := filestore.SanitizeName(originalName)

	storedPath, size, err := s.blobs.Save(fileID+"-"+safeName, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	if originalName == "" {
		originalName = safeName
	}
	mimeType := contentType
	if mimeType == "" {
		mimeType = guessMimeType(originalName)
	}

	file := models.File{
		ID:           fileID,
		OriginalName: originalName,
		StoredPath:   storedPath,
		MimeType:     mimeType,
		SizeBytes:    size,
		IsImage:      imageMimeTypes[mimeType],
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.files.CreateFile(ctx, file); err != nil {
		// Keep the blob directory consistent with the metadata table.
		if rmErr := s.blobs.Remove(storedPath); rmErr != nil {
			s.log.Errorw("failed to remove orphaned upload", "stored_path", storedPath, "error", rmErr)
		}
		return nil, fmt.Errorf("create file row: %w", err)
	}

	s.log.Infow("file uploaded", "file_id", file.ID, "name", file.OriginalName, "size", file.SizeBytes)
	return &file, nil
}

// Vote reconciles a client-reported vote transition into counter deltas.
// Equal previous and next states degenerate to a plain read so repeated
// clicks cause no row-lock contention.
func (s *GalleryService) Vote(ctx context.Context, id string, prev, next models.Vote) (*models.VoteCounts, error) {
	if !prev.Valid() || !next.Valid() {
		return nil, ErrInvalidVote
	}

	likeDelta, dislikeDelta := voteDeltas(prev, next)
	if likeDelta == 0 && dislikeDelta == 0 {
		return s.files.GetVoteCounts(ctx, id)
	}

	return s.files.ApplyVoteDeltas(ctx, id, likeDelta, dislikeDelta)
}

// voteDeltas subtracts the previous state and adds the next one, each
// counter independently.
func voteDeltas(prev, next models.Vote) (likeDelta, dislikeDelta int64) {
	switch prev {
	case models.VoteLike:
		likeDelta--
	case models.VoteDislike:
		dislikeDelta--
	}
	switch next {
	case models.VoteLike:
		likeDelta++
	case models.VoteDislike:
		dislikeDelta++
	}
	return likeDelta, dislikeDelta
}

func guessMimeType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".svg"):
		return "image/svg+xml"
	}
	return "application/octet-stream"
}
