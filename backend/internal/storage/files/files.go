// Package files joins upload records and media content into the storage
// layer seen by the upload pipeline.
package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/itchan-dev/filemsg/shared/logger"
)

type RecordStorage interface {
	FinalizeUpload(ctx context.Context, fileId domain.FileId, userId domain.UserId, meta domain.UploadRecord) error
	SaveThumbnail(ctx context.Context, t *domain.ThumbnailRecord) error
}

type MediaStorage interface {
	Save(ctx context.Context, id string, data io.Reader) (int64, error)
	Read(id string) (io.ReadCloser, error)
	DeleteFile(id string) error
}

type Store struct {
	records      RecordStorage
	media        MediaStorage
	publicPrefix string
	newId        func() string
	now          func() time.Time
}

func New(records RecordStorage, media MediaStorage, publicPrefix string) *Store {
	return &Store{
		records:      records,
		media:        media,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		newId:        uuid.NewString,
		now:          time.Now,
	}
}

func (s *Store) FinalizeUpload(ctx context.Context, fileId domain.FileId, userId domain.UserId, meta domain.UploadRecord) error {
	return s.records.FinalizeUpload(ctx, fileId, userId, meta)
}

func (s *Store) OpenUpload(ctx context.Context, fileId domain.FileId) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.media.Read(fileId)
}

// StoreThumbnail writes the thumbnail content, then its record. The content
// is removed again when the record cannot be written.
func (s *Store) StoreThumbnail(ctx context.Context, original *domain.UploadRecord, buf *domain.ThumbnailBuffer, roomId domain.RoomId, userId domain.UserId) (*domain.ThumbnailRecord, error) {
	id := s.newId()
	size, err := s.media.Save(ctx, id, bytes.NewReader(buf.Data))
	if err != nil {
		return nil, fmt.Errorf("save thumbnail content: %w", err)
	}

	record := &domain.ThumbnailRecord{
		Id:             id,
		OriginalFileId: original.Id,
		Name:           "thumb-" + original.Name,
		Type:           buf.MimeType,
		Size:           size,
		Dimensions:     domain.Dimensions{Width: buf.Width, Height: buf.Height},
		RoomId:         roomId,
		UserId:         userId,
		CreatedAt:      s.now().UTC().Round(time.Microsecond),
	}
	if err := s.records.SaveThumbnail(ctx, record); err != nil {
		if derr := s.media.DeleteFile(id); derr != nil {
			logger.Log.Error("failed to remove thumbnail content",
				"component", "files",
				"thumbnail_id", id,
				"error", derr)
		}
		return nil, fmt.Errorf("save thumbnail record: %w", err)
	}
	return record, nil
}

// PublicPath returns <prefix>/<fileId>/<escaped filename>.
func (s *Store) PublicPath(fileId domain.FileId, filename string) string {
	return s.publicPrefix + "/" + url.PathEscape(fileId) + "/" + url.PathEscape(filename)
}
