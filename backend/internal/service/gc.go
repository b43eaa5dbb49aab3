package service

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/filemsg/backend/internal/metrics"
	"github.com/itchan-dev/filemsg/shared/logger"
)

// MediaGarbageCollector removes media files that no upload or thumbnail
// record references. Thumbnails stored by a cancelled request end up here.
type MediaGarbageCollector struct {
	storage         GCStorage
	mediaStorage    GCMediaStorage
	safetyThreshold time.Duration

	mu        sync.Mutex
	lastStats CleanupStats
}

type CleanupStats struct {
	RunAt         time.Time
	FilesScanned  int
	OrphanedFiles int
	FilesDeleted  int
	DurationMs    int64
	Errors        []string
}

// GCStorage lists the file ids known to the database.
type GCStorage interface {
	GetAllFileIds(ctx context.Context) ([]string, error)
}

// GCMediaStorage walks the media directory. Paths are the ones WalkFiles returns.
type GCMediaStorage interface {
	WalkFiles() ([]string, error)
	FileId(path string) (string, bool)
	GetFileModTime(path string) (time.Time, error)
	DeletePath(path string) error
}

// NewMediaGarbageCollector creates a collector. Files younger than
// safetyThreshold are never deleted, their record may not be committed yet.
func NewMediaGarbageCollector(storage GCStorage, mediaStorage GCMediaStorage, safetyThreshold time.Duration) *MediaGarbageCollector {
	return &MediaGarbageCollector{
		storage:         storage,
		mediaStorage:    mediaStorage,
		safetyThreshold: safetyThreshold,
	}
}

// StartBackgroundCleanup runs RunCleanup every interval until ctx is done.
func (gc *MediaGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started media garbage collector",
		"component", "media_gc",
		"interval", interval,
		"safety_threshold", gc.safetyThreshold)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.RunCleanup(ctx); err != nil {
					logger.Log.Error("media cleanup failed", "component", "media_gc", "error", err)
					continue
				}
				stats := gc.GetLastCleanupStats()
				logger.Log.Info("media cleanup completed",
					"component", "media_gc",
					"scanned", stats.FilesScanned,
					"orphans", stats.OrphanedFiles,
					"deleted", stats.FilesDeleted,
					"duration_ms", stats.DurationMs,
					"errors", len(stats.Errors))
			case <-ctx.Done():
				logger.Log.Info("media garbage collector stopped", "component", "media_gc")
				return
			}
		}
	}()
}

// RunCleanup executes a single collection cycle. Per-file failures are
// recorded in the stats and do not abort the cycle.
func (gc *MediaGarbageCollector) RunCleanup(ctx context.Context) error {
	start := time.Now()
	stats := CleanupStats{RunAt: start, Errors: []string{}}

	ids, err := gc.storage.GetAllFileIds(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	paths, err := gc.mediaStorage.WalkFiles()
	if err != nil {
		return err
	}
	stats.FilesScanned = len(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Temp files and foreign files have no id and are orphans by definition.
		if id, ok := gc.mediaStorage.FileId(path); ok {
			if _, referenced := known[id]; referenced {
				continue
			}
		}

		modTime, err := gc.mediaStorage.GetFileModTime(path)
		if err != nil {
			stats.Errors = append(stats.Errors, "stat error: "+path+": "+err.Error())
			continue
		}
		if time.Since(modTime) < gc.safetyThreshold {
			continue
		}

		stats.OrphanedFiles++
		if err := gc.mediaStorage.DeletePath(path); err != nil {
			stats.Errors = append(stats.Errors, "delete error: "+path+": "+err.Error())
			continue
		}
		stats.FilesDeleted++
		metrics.MediaGCDeletedFiles.Inc()
	}

	stats.DurationMs = time.Since(start).Milliseconds()
	gc.mu.Lock()
	gc.lastStats = stats
	gc.mu.Unlock()
	return nil
}

func (gc *MediaGarbageCollector) GetLastCleanupStats() CleanupStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastStats
}
