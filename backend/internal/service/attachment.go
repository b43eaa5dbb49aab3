package service

import (
	"context"
	"html"

	"github.com/itchan-dev/filemsg/backend/internal/metrics"
	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/itchan-dev/filemsg/shared/logger"
	"github.com/microcosm-cc/bluemonday"
)

type BuildInput struct {
	Upload *domain.UploadRecord
	Link   string
	RoomId domain.RoomId
	UserId domain.UserId
}

type AttachmentBuilder struct {
	thumbnails ThumbnailDeriver
	policy     *bluemonday.Policy
}

// NewAttachmentBuilder creates a builder. thumbnails may be nil, image
// attachments then always point at the original file.
func NewAttachmentBuilder(thumbnails ThumbnailDeriver) *AttachmentBuilder {
	return &AttachmentBuilder{
		thumbnails: thumbnails,
		policy:     bluemonday.StrictPolicy(),
	}
}

// Build returns the attachment for an upload and the id of the thumbnail
// it points to, if any. Thumbnail failures never fail the build.
func (b *AttachmentBuilder) Build(ctx context.Context, in BuildInput) (domain.Attachment, *domain.ThumbnailId) {
	upload := in.Upload
	attachment := domain.Attachment{
		Title:             b.plainText(upload.Name),
		Type:              domain.AttachmentTypeFile,
		Description:       b.plainText(upload.Description),
		TitleLink:         in.Link,
		TitleLinkDownload: true,
	}

	var thumbId *domain.ThumbnailId
	switch domain.Classify(upload.Type) {
	case domain.FileKindImage:
		attachment.Image, thumbId = b.imageFields(ctx, in)
	case domain.FileKindAudio:
		attachment.Audio = &domain.MediaFields{URL: in.Link, Type: upload.Type, Size: upload.Size}
	case domain.FileKindVideo:
		attachment.Video = &domain.MediaFields{URL: in.Link, Type: upload.Type, Size: upload.Size}
	}
	return attachment, thumbId
}

// plainText strips markup, the strict policy escapes entities so they are
// decoded back to keep names like "a & b.png" intact.
func (b *AttachmentBuilder) plainText(s string) string {
	return html.UnescapeString(b.policy.Sanitize(s))
}

func (b *AttachmentBuilder) imageFields(ctx context.Context, in BuildInput) (*domain.ImageFields, *domain.ThumbnailId) {
	original := domain.ImageFields{
		URL:        in.Link,
		Type:       in.Upload.Type,
		Size:       in.Upload.Size,
		Dimensions: in.Upload.IdentifiedSize(),
	}
	if b.thumbnails == nil {
		return &original, nil
	}

	d := b.thumbnails.Derive(ctx, DeriveInput{Upload: in.Upload, RoomId: in.RoomId, UserId: in.UserId})
	metrics.ThumbnailDerivations.WithLabelValues(d.Kind.String()).Inc()

	switch d.Kind {
	case DerivationStored:
		dims := d.Thumbnail.Dimensions
		id := d.Thumbnail.Id
		return &domain.ImageFields{
			URL:        d.Link,
			Type:       d.Thumbnail.Type,
			Size:       d.Thumbnail.Size,
			Dimensions: &dims,
			Preview:    d.Preview,
		}, &id
	case DerivationNone:
		original.Preview = d.Preview
		return &original, nil
	default:
		logger.Log.Warn("thumbnail derivation failed, using original file",
			"component", "attachment_builder",
			"file_id", in.Upload.Id,
			"room_id", in.RoomId,
			"error", d.Err)
		return &original, nil
	}
}
