package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
)

// Files are stored as <root>/<first two chars of id>/<id>.
type Storage struct {
	rootPath string
}

var validId = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

const tmpPrefix = ".tmp-"

func New(rootPath string) (*Storage, error) {
	// Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}
	return &Storage{rootPath: p}, nil
}

func (s *Storage) pathFor(id string) (string, error) {
	if !validId.MatchString(id) {
		return "", fmt.Errorf("invalid file id %q", id)
	}
	return filepath.Join(s.rootPath, id[:2], id), nil
}

// Save writes the content under id and returns the number of bytes written.
// Data goes to a temp file first, so a reader never sees a partial file.
func (s *Storage) Save(ctx context.Context, id string, data io.Reader) (int64, error) {
	fullPath, err := s.pathFor(id)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create subdirectories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+id+"-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	tmpPath := tmp.Name()

	n, copyErr := io.Copy(tmp, data)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath) // best effort
		if copyErr != nil {
			return 0, fmt.Errorf("failed to copy file data: %w", copyErr)
		}
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}
	return n, nil
}

func (s *Storage) Read(id string) (io.ReadCloser, error) {
	fullPath, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", id, internal_errors.NotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// DeleteFile removes a file, a missing file is not an error.
func (s *Storage) DeleteFile(id string) error {
	fullPath, err := s.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// WalkFiles lists the ids of all stored files, temp files included so
// abandoned writes can be collected too.
func (s *Storage) WalkFiles() ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, path)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk media directory: %w", err)
	}
	return ids, nil
}

// IdFromPath extracts the file id from a WalkFiles entry.
// ok is false for temp files and anything outside the layout.
func IdFromPath(rel string) (id string, ok bool) {
	dir, name, found := strings.Cut(rel, "/")
	if !found || strings.HasPrefix(name, tmpPrefix) || !validId.MatchString(name) || !strings.HasPrefix(name, dir) {
		return "", false
	}
	return name, true
}

func (s *Storage) GetFileModTime(rel string) (time.Time, error) {
	info, err := os.Stat(filepath.Join(s.rootPath, filepath.FromSlash(filepath.Clean(rel))))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// DeletePath removes a WalkFiles entry, used by the media GC for temp files.
func (s *Storage) DeletePath(rel string) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid media path %q", rel)
	}
	if err := os.Remove(filepath.Join(s.rootPath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileId is IdFromPath as a method, for callers holding a *Storage.
func (s *Storage) FileId(rel string) (string, bool) {
	return IdFromPath(rel)
}
