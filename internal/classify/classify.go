// Package classify maps attachment metadata to a media category and a
// file extension.
package classify

import "strings"

// Kind is the protocol-level attachment flavor.
type Kind string

const (
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// Category is the filing category a placed attachment belongs to.
type Category string

const (
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
	CategoryPhoto Category = "photo"
	CategoryOther Category = "other"
)

var mimeExtensions = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	"video/webm":       ".webm",
	"audio/mpeg":       ".mp3",
	"audio/x-wav":      ".wav",
	"audio/x-flac":     ".flac",
	"audio/m4a":        ".m4a",
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
}

// Classify returns the filing category and file extension for an
// attachment. Inline photos are always photo/.jpg; everything else is
// classified by MIME-type prefix, with unknown or missing MIME
// information landing in CategoryOther.
func Classify(kind Kind, mimeType string) (Category, string) {
	if kind == KindPhoto {
		return CategoryPhoto, ".jpg"
	}
	mime := strings.TrimSpace(mimeType)
	switch {
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo, Extension(kind, mime)
	case strings.HasPrefix(mime, "audio/"):
		return CategoryAudio, Extension(kind, mime)
	case strings.HasPrefix(mime, "image/"):
		return CategoryPhoto, Extension(kind, mime)
	}
	return CategoryOther, Extension(kind, mime)
}

// Extension resolves a file extension: the fixed lookup table for known
// MIME types, "." plus the MIME subtype for the rest, ".bin" when no
// MIME information exists at all.
func Extension(kind Kind, mimeType string) string {
	if kind == KindPhoto {
		return ".jpg"
	}
	mime := strings.TrimSpace(mimeType)
	if mime == "" {
		return ".bin"
	}
	if ext, ok := mimeExtensions[mime]; ok {
		return ext
	}
	if idx := strings.LastIndex(mime, "/"); idx >= 0 && idx+1 < len(mime) {
		return "." + mime[idx+1:]
	}
	return ".bin"
}
