package service

import (
	"context"
	"fmt"
	"io"

	"github.com/itchan-dev/filemsg/shared/domain"
	"golang.org/x/sync/errgroup"
)

type ImageProcessor interface {
	Preview(ctx context.Context, src []byte) (string, error)
	// Thumbnail returns nil when no thumbnail applies to the image.
	Thumbnail(ctx context.Context, src []byte) (*domain.ThumbnailBuffer, error)
}

type DerivationKind int

const (
	// DerivationNone: nothing to substitute, the preview may still be set.
	DerivationNone DerivationKind = iota
	// DerivationStored: a thumbnail was stored and can replace the original.
	DerivationStored
	// DerivationFailed: discard everything and fall back to the original.
	DerivationFailed
)

func (k DerivationKind) String() string {
	switch k {
	case DerivationStored:
		return "stored"
	case DerivationFailed:
		return "failed"
	default:
		return "none"
	}
}

// Derivation is the outcome of a thumbnail pipeline run.
type Derivation struct {
	Kind      DerivationKind
	Preview   string
	Thumbnail *domain.ThumbnailRecord
	Link      string
	Err       error
}

func derivationFailed(err error) Derivation {
	return Derivation{Kind: DerivationFailed, Err: err}
}

type DeriveInput struct {
	Upload *domain.UploadRecord
	RoomId domain.RoomId
	UserId domain.UserId
}

type ThumbnailDeriver interface {
	Derive(ctx context.Context, in DeriveInput) Derivation
}

type ThumbnailPipeline struct {
	files    FileStorage
	images   ImageProcessor
	maxBytes int64
}

// NewThumbnailPipeline creates a pipeline reading at most maxBytes of an original.
func NewThumbnailPipeline(files FileStorage, images ImageProcessor, maxBytes int64) *ThumbnailPipeline {
	return &ThumbnailPipeline{files: files, images: images, maxBytes: maxBytes}
}

// Derive computes the preview and the thumbnail of an image upload.
// Both derivations run concurrently and are joined before anything is
// written; the thumbnail is stored only when both succeeded and the
// context is still alive.
func (p *ThumbnailPipeline) Derive(ctx context.Context, in DeriveInput) Derivation {
	src, err := p.readOriginal(ctx, in.Upload.Id)
	if err != nil {
		return derivationFailed(err)
	}

	var (
		preview string
		buf     *domain.ThumbnailBuffer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if preview, err = p.images.Preview(gctx, src); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if buf, err = p.images.Thumbnail(gctx, src); err != nil {
			return fmt.Errorf("thumbnail: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return derivationFailed(err)
	}

	if buf == nil || len(buf.Data) == 0 {
		return Derivation{Kind: DerivationNone, Preview: preview}
	}
	if err := ctx.Err(); err != nil {
		return derivationFailed(err)
	}

	record, err := p.files.StoreThumbnail(ctx, in.Upload, buf, in.RoomId, in.UserId)
	if err != nil {
		return derivationFailed(fmt.Errorf("store thumbnail: %w", err))
	}
	// Cancelled while storing: the record stays unreferenced, the caller
	// falls back to the original.
	if err := ctx.Err(); err != nil {
		return derivationFailed(err)
	}

	return Derivation{
		Kind:      DerivationStored,
		Preview:   preview,
		Thumbnail: record,
		Link:      p.files.PublicPath(record.Id, in.Upload.Name),
	}
}

func (p *ThumbnailPipeline) readOriginal(ctx context.Context, fileId domain.FileId) ([]byte, error) {
	r, err := p.files.OpenUpload(ctx, fileId)
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer r.Close()

	src, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read original: %w", err)
	}
	if int64(len(src)) > p.maxBytes {
		return nil, fmt.Errorf("original exceeds %d bytes", p.maxBytes)
	}
	return src, nil
}
