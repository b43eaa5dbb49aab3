package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks for GC Tests ---

type MockGCStorage struct {
	getAllFileIdsFunc func(ctx context.Context) ([]string, error)
}

func (m *MockGCStorage) GetAllFileIds(ctx context.Context) ([]string, error) {
	if m.getAllFileIdsFunc != nil {
		return m.getAllFileIdsFunc(ctx)
	}
	return []string{}, nil
}

type MockGCMediaStorage struct {
	mu                 sync.Mutex
	walkFilesFunc      func() ([]string, error)
	getFileModTimeFunc func(path string) (time.Time, error)
	deletePathFunc     func(path string) error
	deletePathCalls    []string
}

func (m *MockGCMediaStorage) WalkFiles() ([]string, error) {
	if m.walkFilesFunc != nil {
		return m.walkFilesFunc()
	}
	return []string{}, nil
}

// FileId mirrors the fs layout: "<prefix>/<id>", temp files start with ".tmp-".
func (m *MockGCMediaStorage) FileId(path string) (string, bool) {
	_, name, ok := strings.Cut(path, "/")
	if !ok || strings.HasPrefix(name, ".tmp-") {
		return "", false
	}
	return name, true
}

func (m *MockGCMediaStorage) GetFileModTime(path string) (time.Time, error) {
	if m.getFileModTimeFunc != nil {
		return m.getFileModTimeFunc(path)
	}
	return time.Now().Add(-1 * time.Hour), nil
}

func (m *MockGCMediaStorage) DeletePath(path string) error {
	m.mu.Lock()
	m.deletePathCalls = append(m.deletePathCalls, path)
	m.mu.Unlock()

	if m.deletePathFunc != nil {
		return m.deletePathFunc(path)
	}
	return nil
}

// --- Tests ---

func TestMediaGarbageCollectorCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes unreferenced files and keeps referenced ones", func(t *testing.T) {
		storage := &MockGCStorage{
			getAllFileIdsFunc: func(ctx context.Context) ([]string, error) {
				return []string{"upload1", "thumb1"}, nil
			},
		}
		media := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) {
				return []string{
					"up/upload1",
					"th/thumb1",
					"th/thumb2",          // thumbnail of a cancelled request
					"up/.tmp-3849201938", // abandoned write
				}, nil
			},
		}

		gc := NewMediaGarbageCollector(storage, media, 5*time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 4, stats.FilesScanned)
		assert.Equal(t, 2, stats.OrphanedFiles)
		assert.Equal(t, 2, stats.FilesDeleted)
		assert.Empty(t, stats.Errors)
		assert.ElementsMatch(t, []string{"th/thumb2", "up/.tmp-3849201938"}, media.deletePathCalls)
	})

	t.Run("respects safety threshold and skips young files", func(t *testing.T) {
		media := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) {
				return []string{"ol/old_orphan", "yo/young_orphan"}, nil
			},
			getFileModTimeFunc: func(path string) (time.Time, error) {
				if path == "ol/old_orphan" {
					return time.Now().Add(-10 * time.Minute), nil
				}
				return time.Now().Add(-1 * time.Minute), nil
			},
		}

		gc := NewMediaGarbageCollector(&MockGCStorage{}, media, 5*time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 1, stats.OrphanedFiles)
		assert.Equal(t, 1, stats.FilesDeleted)
		assert.Equal(t, []string{"ol/old_orphan"}, media.deletePathCalls)
	})

	t.Run("records per-file errors and continues", func(t *testing.T) {
		media := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) {
				return []string{"or/orphan1", "or/orphan2", "st/stat_fails"}, nil
			},
			getFileModTimeFunc: func(path string) (time.Time, error) {
				if path == "st/stat_fails" {
					return time.Time{}, errors.New("no such file")
				}
				return time.Now().Add(-10 * time.Minute), nil
			},
			deletePathFunc: func(path string) error {
				if path == "or/orphan2" {
					return errors.New("permission denied")
				}
				return nil
			},
		}

		gc := NewMediaGarbageCollector(&MockGCStorage{}, media, 5*time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 3, stats.FilesScanned)
		assert.Equal(t, 2, stats.OrphanedFiles)
		assert.Equal(t, 1, stats.FilesDeleted)
		require.Len(t, stats.Errors, 2)
		assert.Contains(t, stats.Errors[0], "permission denied")
		assert.Contains(t, stats.Errors[1], "no such file")
	})

	t.Run("database error aborts the cycle", func(t *testing.T) {
		storage := &MockGCStorage{
			getAllFileIdsFunc: func(ctx context.Context) ([]string, error) {
				return nil, errors.New("database connection error")
			},
		}
		media := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) {
				t.Fatal("filesystem must not be walked")
				return nil, nil
			},
		}

		gc := NewMediaGarbageCollector(storage, media, time.Minute)
		assert.ErrorContains(t, gc.RunCleanup(ctx), "database connection error")
		assert.Empty(t, media.deletePathCalls)
	})

	t.Run("handles empty filesystem and database", func(t *testing.T) {
		media := &MockGCMediaStorage{}
		gc := NewMediaGarbageCollector(&MockGCStorage{}, media, time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 0, stats.FilesScanned)
		assert.Equal(t, 0, stats.FilesDeleted)
		assert.Empty(t, media.deletePathCalls)
	})
}

func TestMediaGarbageCollectorBackground(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	storage := &MockGCStorage{
		getAllFileIdsFunc: func(ctx context.Context) ([]string, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewMediaGarbageCollector(storage, &MockGCMediaStorage{}, time.Minute).StartBackgroundCleanup(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, time.Second, 5*time.Millisecond)
}
