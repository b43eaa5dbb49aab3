package service

import (
	"context"
	"io"

	"github.com/itchan-dev/filemsg/shared/domain"
)

// FileStorage is the storage layer as seen by the upload pipeline.
type FileStorage interface {
	// FinalizeUpload marks an upload as complete and records its metadata.
	FinalizeUpload(ctx context.Context, fileId domain.FileId, userId domain.UserId, meta domain.UploadRecord) error

	// OpenUpload opens the original content of an upload.
	OpenUpload(ctx context.Context, fileId domain.FileId) (io.ReadCloser, error)

	// StoreThumbnail persists a derived thumbnail as a new stored object
	// associated with the room and the acting user.
	StoreThumbnail(ctx context.Context, original *domain.UploadRecord, buf *domain.ThumbnailBuffer, roomId domain.RoomId, userId domain.UserId) (*domain.ThumbnailRecord, error)

	// PublicPath returns the link under which a stored file is served.
	PublicPath(fileId domain.FileId, filename string) string
}
