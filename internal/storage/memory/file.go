package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/storage"
)

// FileRepository mirrors the postgres file repository, including the
// at-zero clamping and the soft-delete visibility rules.
type FileRepository struct {
	mu    sync.RWMutex
	files map[string]models.File
}

func NewFileRepository() *FileRepository {
	return &FileRepository{
		files: make(map[string]models.File),
	}
}

func (m *FileRepository) CreateFile(_ context.Context, file models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[file.ID] = file
	return nil
}

func (m *FileRepository) GetFile(_ context.Context, id string) (*models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return &file, nil
}

func (m *FileRepository) ListFiles(_ context.Context, includeHidden bool, limit int) ([]models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := []models.File{}
	for _, file := range m.files {
		if !includeHidden && file.Hidden() {
			continue
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *FileRepository) UpdateFileInfo(_ context.Context, id, title, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return storage.ErrFileNotFound
	}
	file.Title = title
	file.Description = description
	m.files[id] = file
	return nil
}

func (m *FileRepository) SetFileHidden(_ context.Context, id string, hidden bool, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return storage.ErrFileNotFound
	}
	if hidden {
		file.DeletedAt = &now
	} else {
		file.DeletedAt = nil
	}
	m.files[id] = file
	return nil
}

func (m *FileRepository) ApplyVoteDeltas(_ context.Context, id string, likeDelta, dislikeDelta int64) (*models.VoteCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok || file.Hidden() {
		return nil, storage.ErrFileNotFound
	}
	file.LikeCount = clamp(file.LikeCount + likeDelta)
	file.DislikeCount = clamp(file.DislikeCount + dislikeDelta)
	m.files[id] = file

	return &models.VoteCounts{LikeCount: file.LikeCount, DislikeCount: file.DislikeCount}, nil
}

func (m *FileRepository) GetVoteCounts(_ context.Context, id string) (*models.VoteCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok || file.Hidden() {
		return nil, storage.ErrFileNotFound
	}
	return &models.VoteCounts{LikeCount: file.LikeCount, DislikeCount: file.DislikeCount}, nil
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
