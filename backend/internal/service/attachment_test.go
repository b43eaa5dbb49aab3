package service

import (
	"context"
	"errors"
	"testing"

	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInput(upload *domain.UploadRecord) BuildInput {
	return BuildInput{
		Upload: upload,
		Link:   "/file-upload/" + upload.Id + "/" + upload.Name,
		RoomId: "room1",
		UserId: "user1",
	}
}

func storedDerivation() Derivation {
	return Derivation{
		Kind:    DerivationStored,
		Preview: "cHJldmlldw==",
		Thumbnail: &domain.ThumbnailRecord{
			Id:         "thumb1",
			Type:       "image/jpeg",
			Size:       42,
			Dimensions: domain.Dimensions{Width: 480, Height: 320},
		},
		Link: "/file-upload/thumb1/a.png",
	}
}

func TestAttachmentBuilderFieldGroups(t *testing.T) {
	builder := NewAttachmentBuilder(&MockThumbnailDeriver{})

	testCases := []struct {
		mimeType  string
		wantImage bool
		wantAudio bool
		wantVideo bool
	}{
		{mimeType: "image/png", wantImage: true},
		{mimeType: "IMAGE/JPEG", wantImage: true},
		{mimeType: "audio/mpeg", wantAudio: true},
		{mimeType: "video/mp4", wantVideo: true},
		{mimeType: "application/pdf"},
		{mimeType: "text/plain"},
		{mimeType: "image/"},
		{mimeType: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.mimeType, func(t *testing.T) {
			upload := &domain.UploadRecord{Id: "file1", Name: "f", Type: tc.mimeType, Size: 7}
			a, _ := builder.Build(context.Background(), buildInput(upload))

			assert.Equal(t, tc.wantImage, a.Image != nil, "image")
			assert.Equal(t, tc.wantAudio, a.Audio != nil, "audio")
			assert.Equal(t, tc.wantVideo, a.Video != nil, "video")
			assert.Equal(t, "f", a.Title)
			assert.Equal(t, domain.AttachmentTypeFile, a.Type)
			assert.Equal(t, "/file-upload/file1/f", a.TitleLink)
			assert.True(t, a.TitleLinkDownload)
		})
	}
}

func TestAttachmentBuilderMedia(t *testing.T) {
	builder := NewAttachmentBuilder(&MockThumbnailDeriver{
		DeriveFunc: func(ctx context.Context, in DeriveInput) Derivation {
			t.Fatal("thumbnails are for images only")
			return Derivation{}
		},
	})

	upload := &domain.UploadRecord{Id: "file1", Name: "song.mp3", Type: "audio/mpeg", Size: 3000}
	a, thumbId := builder.Build(context.Background(), buildInput(upload))
	assert.Nil(t, thumbId)
	assert.Equal(t, &domain.MediaFields{URL: "/file-upload/file1/song.mp3", Type: "audio/mpeg", Size: 3000}, a.Audio)

	upload = &domain.UploadRecord{Id: "file2", Name: "clip.webm", Type: "video/webm", Size: 9000}
	a, _ = builder.Build(context.Background(), buildInput(upload))
	assert.Equal(t, &domain.MediaFields{URL: "/file-upload/file2/clip.webm", Type: "video/webm", Size: 9000}, a.Video)
}

func TestAttachmentBuilderImage(t *testing.T) {
	upload := &domain.UploadRecord{
		Id:       "file1",
		Name:     "a.png",
		Type:     "image/png",
		Size:     100,
		Identify: &domain.Identify{Size: &domain.Dimensions{Width: 1920, Height: 1280}},
	}
	original := &domain.ImageFields{
		URL:        "/file-upload/file1/a.png",
		Type:       "image/png",
		Size:       100,
		Dimensions: &domain.Dimensions{Width: 1920, Height: 1280},
	}

	t.Run("thumbnail replaces every image field", func(t *testing.T) {
		builder := NewAttachmentBuilder(&MockThumbnailDeriver{
			DeriveFunc: func(ctx context.Context, in DeriveInput) Derivation {
				assert.Equal(t, "room1", in.RoomId)
				assert.Equal(t, "user1", in.UserId)
				return storedDerivation()
			},
		})

		a, thumbId := builder.Build(context.Background(), buildInput(upload))
		require.NotNil(t, thumbId)
		assert.Equal(t, "thumb1", *thumbId)
		assert.Equal(t, &domain.ImageFields{
			URL:        "/file-upload/thumb1/a.png",
			Type:       "image/jpeg",
			Size:       42,
			Dimensions: &domain.Dimensions{Width: 480, Height: 320},
			Preview:    "cHJldmlldw==",
		}, a.Image)
		// The title link keeps pointing at the original for download.
		assert.Equal(t, "/file-upload/file1/a.png", a.TitleLink)
	})

	t.Run("failure equals building without thumbnails", func(t *testing.T) {
		failing := NewAttachmentBuilder(&MockThumbnailDeriver{
			DeriveFunc: func(ctx context.Context, in DeriveInput) Derivation {
				return Derivation{Kind: DerivationFailed, Preview: "ignored", Err: errors.New("boom")}
			},
		})
		plain := NewAttachmentBuilder(nil)

		got, thumbId := failing.Build(context.Background(), buildInput(upload))
		want, _ := plain.Build(context.Background(), buildInput(upload))
		assert.Nil(t, thumbId)
		assert.Equal(t, want, got)
		assert.Equal(t, original, got.Image)
	})

	t.Run("not applicable keeps original with preview", func(t *testing.T) {
		builder := NewAttachmentBuilder(&MockThumbnailDeriver{
			DeriveFunc: func(ctx context.Context, in DeriveInput) Derivation {
				return Derivation{Kind: DerivationNone, Preview: "cHJldmlldw=="}
			},
		})

		a, thumbId := builder.Build(context.Background(), buildInput(upload))
		assert.Nil(t, thumbId)
		want := *original
		want.Preview = "cHJldmlldw=="
		assert.Equal(t, &want, a.Image)
	})

	t.Run("no identified size leaves dimensions unset", func(t *testing.T) {
		a, _ := NewAttachmentBuilder(nil).Build(context.Background(), buildInput(imageUpload()))
		require.NotNil(t, a.Image)
		assert.Nil(t, a.Image.Dimensions)
	})
}

func TestAttachmentBuilderSanitizes(t *testing.T) {
	upload := &domain.UploadRecord{
		Id:          "file1",
		Name:        `<script>alert(1)</script>a & b.pdf`,
		Type:        "application/pdf",
		Description: `<b>quarterly</b> report`,
	}
	a, _ := NewAttachmentBuilder(nil).Build(context.Background(), buildInput(upload))
	assert.Equal(t, "a & b.pdf", a.Title)
	assert.Equal(t, "quarterly report", a.Description)
}
