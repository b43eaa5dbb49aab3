package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/itchan-dev/filemsg/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Thumbnails {
	return config.Thumbnails{
		Enabled:         true,
		Width:           480,
		Height:          360,
		PreviewSize:     32,
		JPEGQuality:     80,
		MaxDecodedBytes: 50 * 1024 * 1024,
	}
}

func makeImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, makeImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, makeImage(w, h), nil))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	ctx := context.Background()

	t.Run("png stays png and fits the box", func(t *testing.T) {
		thumb, err := New(testConfig()).Thumbnail(ctx, encodePNG(t, 800, 600))
		require.NoError(t, err)
		require.NotNil(t, thumb)

		assert.Equal(t, "image/png", thumb.MimeType)
		assert.Equal(t, 480, thumb.Width)
		assert.Equal(t, 360, thumb.Height)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb.Data))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 480, cfg.Width)
		assert.Equal(t, 360, cfg.Height)
	})

	t.Run("jpeg keeps aspect ratio", func(t *testing.T) {
		thumb, err := New(testConfig()).Thumbnail(ctx, encodeJPEG(t, 1000, 500))
		require.NoError(t, err)
		require.NotNil(t, thumb)

		assert.Equal(t, "image/jpeg", thumb.MimeType)
		assert.Equal(t, 480, thumb.Width)
		assert.Equal(t, 240, thumb.Height)
	})

	t.Run("small image needs no thumbnail", func(t *testing.T) {
		thumb, err := New(testConfig()).Thumbnail(ctx, encodePNG(t, 100, 100))
		require.NoError(t, err)
		assert.Nil(t, thumb)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Enabled = false
		thumb, err := New(cfg).Thumbnail(ctx, encodePNG(t, 800, 600))
		require.NoError(t, err)
		assert.Nil(t, thumb)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := New(testConfig()).Thumbnail(ctx, []byte("%PDF-1.4"))
		require.Error(t, err)
	})

	t.Run("decoded size over limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxDecodedBytes = 1000
		_, err := New(cfg).Thumbnail(ctx, encodePNG(t, 800, 600))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image too large")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := New(testConfig()).Thumbnail(cancelled, encodePNG(t, 800, 600))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPreview(t *testing.T) {
	preview, err := New(testConfig()).Preview(context.Background(), encodePNG(t, 640, 320))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(preview)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)

	_, err = New(testConfig()).Preview(context.Background(), []byte("nope"))
	require.Error(t, err)
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{800, 600, 480, 360, 480, 360},
		{1000, 500, 480, 360, 480, 240},
		{300, 900, 480, 360, 120, 360},
		{100, 50, 480, 360, 100, 50},
		{5000, 1, 480, 360, 480, 1},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
	}
}
