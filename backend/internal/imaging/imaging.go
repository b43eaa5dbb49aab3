// Package imaging derives previews and thumbnails from uploaded images.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/itchan-dev/filemsg/shared/config"
	"github.com/itchan-dev/filemsg/shared/domain"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const previewQuality = 50

type Processor struct {
	cfg config.Thumbnails
}

func New(cfg config.Thumbnails) *Processor {
	return &Processor{cfg: cfg}
}

// Preview returns a tiny base64 JPEG that clients can inline while the
// real image loads.
func (p *Processor) Preview(ctx context.Context, src []byte) (string, error) {
	img, _, err := p.decode(ctx, src)
	if err != nil {
		return "", err
	}

	w, h := fit(img.Bounds().Dx(), img.Bounds().Dy(), p.cfg.PreviewSize, p.cfg.PreviewSize)
	scaled := scale(img, w, h, draw.ApproxBiLinear)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(scaled), &jpeg.Options{Quality: previewQuality}); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Thumbnail returns a copy scaled to fit the configured box.
// It returns nil without error when thumbnails are disabled or the image
// already fits, there is nothing to gain from a thumbnail then.
func (p *Processor) Thumbnail(ctx context.Context, src []byte) (*domain.ThumbnailBuffer, error) {
	if !p.cfg.Enabled {
		return nil, nil
	}

	img, format, err := p.decode(ctx, src)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() <= p.cfg.Width && bounds.Dy() <= p.cfg.Height {
		return nil, nil
	}

	w, h := fit(bounds.Dx(), bounds.Dy(), p.cfg.Width, p.cfg.Height)
	scaled := scale(img, w, h, draw.CatmullRom)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mimeType := "image/jpeg"
	if format == "png" || format == "gif" {
		// keep transparency
		mimeType = "image/png"
		err = png.Encode(&buf, scaled)
	} else {
		err = jpeg.Encode(&buf, flatten(scaled), &jpeg.Options{Quality: p.cfg.JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &domain.ThumbnailBuffer{
		Data:     buf.Bytes(),
		MimeType: mimeType,
		Width:    w,
		Height:   h,
	}, nil
}

// decode checks the decoded size before decoding, a crafted header can
// claim 65535x65535 and make image.Decode allocate gigabytes.
func (p *Processor) decode(ctx context.Context, src []byte) (image.Image, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image dimensions: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height)*4 > p.cfg.MaxDecodedBytes {
		return nil, "", fmt.Errorf("image too large: %dx%d pixels, decoded size would exceed %d bytes limit",
			cfg.Width, cfg.Height, p.cfg.MaxDecodedBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// fit scales (w, h) down to the largest size inside (maxW, maxH) keeping aspect ratio.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*ratio+0.5))
	nh := max(1, int(float64(h)*ratio+0.5))
	return min(nw, maxW), min(nh, maxH)
}

func scale(src image.Image, w, h int, interp draw.Interpolator) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// flatten composites onto white, JPEG has no alpha channel.
func flatten(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	return dst
}
