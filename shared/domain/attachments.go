package domain

import (
	"encoding/json"
	"time"
)

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Identify holds what the upload layer learned by inspecting the file.
type Identify struct {
	Format string      `json:"format,omitempty"`
	Size   *Dimensions `json:"size,omitempty"`
}

// UploadRecord is a finalized upload as owned by the storage layer.
type UploadRecord struct {
	Id          FileId    `json:"_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Type        MimeType  `json:"type"`
	Size        int64     `json:"size" validate:"gte=0"`
	Identify    *Identify `json:"identify,omitempty"`
	Description string    `json:"description,omitempty"`
	Store       string    `json:"store,omitempty"`
}

// IdentifiedSize returns the dimensions found by the upload layer, if any.
func (u *UploadRecord) IdentifiedSize() *Dimensions {
	if u.Identify == nil || u.Identify.Size == nil {
		return nil
	}
	d := *u.Identify.Size
	return &d
}

const AttachmentTypeFile = "file"

type ImageFields struct {
	URL        string
	Type       MimeType
	Size       int64
	Dimensions *Dimensions
	Preview    string
}

type MediaFields struct {
	URL  string
	Type MimeType
	Size int64
}

// Attachment describes how an uploaded file is rendered inside a message.
// At most one of Image, Audio and Video is set.
type Attachment struct {
	Title             string
	Type              string
	Description       string
	TitleLink         string
	TitleLinkDownload bool

	Image *ImageFields
	Audio *MediaFields
	Video *MediaFields
}

type attachmentWire struct {
	Title             string `json:"title"`
	Type              string `json:"type"`
	Description       string `json:"description,omitempty"`
	TitleLink         string `json:"title_link"`
	TitleLinkDownload bool   `json:"title_link_download"`

	ImageURL        string      `json:"image_url,omitempty"`
	ImageType       string      `json:"image_type,omitempty"`
	ImageSize       *int64      `json:"image_size,omitempty"`
	ImageDimensions *Dimensions `json:"image_dimensions,omitempty"`
	ImagePreview    string      `json:"image_preview,omitempty"`

	AudioURL  string `json:"audio_url,omitempty"`
	AudioType string `json:"audio_type,omitempty"`
	AudioSize *int64 `json:"audio_size,omitempty"`

	VideoURL  string `json:"video_url,omitempty"`
	VideoType string `json:"video_type,omitempty"`
	VideoSize *int64 `json:"video_size,omitempty"`
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	w := attachmentWire{
		Title:             a.Title,
		Type:              a.Type,
		Description:       a.Description,
		TitleLink:         a.TitleLink,
		TitleLinkDownload: a.TitleLinkDownload,
	}
	if a.Image != nil {
		size := a.Image.Size
		w.ImageURL, w.ImageType, w.ImageSize = a.Image.URL, a.Image.Type, &size
		w.ImageDimensions, w.ImagePreview = a.Image.Dimensions, a.Image.Preview
	}
	if a.Audio != nil {
		size := a.Audio.Size
		w.AudioURL, w.AudioType, w.AudioSize = a.Audio.URL, a.Audio.Type, &size
	}
	if a.Video != nil {
		size := a.Video.Size
		w.VideoURL, w.VideoType, w.VideoSize = a.Video.URL, a.Video.Type, &size
	}
	return json.Marshal(w)
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var w attachmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Attachment{
		Title:             w.Title,
		Type:              w.Type,
		Description:       w.Description,
		TitleLink:         w.TitleLink,
		TitleLinkDownload: w.TitleLinkDownload,
	}
	if w.ImageURL != "" {
		a.Image = &ImageFields{URL: w.ImageURL, Type: w.ImageType, Size: deref(w.ImageSize), Dimensions: w.ImageDimensions, Preview: w.ImagePreview}
	}
	if w.AudioURL != "" {
		a.Audio = &MediaFields{URL: w.AudioURL, Type: w.AudioType, Size: deref(w.AudioSize)}
	}
	if w.VideoURL != "" {
		a.Video = &MediaFields{URL: w.VideoURL, Type: w.VideoType, Size: deref(w.VideoSize)}
	}
	return nil
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// Clone returns a copy that shares no pointers with a.
func (a Attachment) Clone() Attachment {
	c := a
	if a.Image != nil {
		img := *a.Image
		if a.Image.Dimensions != nil {
			d := *a.Image.Dimensions
			img.Dimensions = &d
		}
		c.Image = &img
	}
	if a.Audio != nil {
		audio := *a.Audio
		c.Audio = &audio
	}
	if a.Video != nil {
		video := *a.Video
		c.Video = &video
	}
	return c
}

// ThumbnailBuffer is an encoded thumbnail that has not been stored yet.
type ThumbnailBuffer struct {
	Data     []byte
	MimeType MimeType
	Width    int
	Height   int
}

// ThumbnailRecord is a stored thumbnail. It references the original upload
// but is owned by the storage layer and may outlive any message using it.
type ThumbnailRecord struct {
	Id             ThumbnailId
	OriginalFileId FileId
	Name           string
	Type           MimeType
	Size           int64
	Dimensions     Dimensions
	RoomId         RoomId
	UserId         UserId
	CreatedAt      time.Time
}
