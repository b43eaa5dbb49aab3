package domain

import (
	"mime"
	"strings"
)

type FileKind int

const (
	FileKindGeneric FileKind = iota
	FileKindImage
	FileKindAudio
	FileKindVideo
)

func (k FileKind) String() string {
	switch k {
	case FileKindImage:
		return "image"
	case FileKindAudio:
		return "audio"
	case FileKindVideo:
		return "video"
	default:
		return "generic"
	}
}

// Classify maps a declared media type to a file kind.
// "image/png" is an image, a bare "image/" is not.
func Classify(mimeType MimeType) FileKind {
	t := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(t); err == nil {
		t = parsed
	}

	switch {
	case hasSubtype(t, "image/"):
		return FileKindImage
	case hasSubtype(t, "audio/"):
		return FileKindAudio
	case hasSubtype(t, "video/"):
		return FileKindVideo
	default:
		return FileKindGeneric
	}
}

func hasSubtype(t, prefix string) bool {
	return len(t) > len(prefix) && strings.HasPrefix(t, prefix)
}
