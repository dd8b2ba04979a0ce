package classify_test

import (
	"testing"

	"github.com/CrushDope/Telegram-Assistant/internal/classify"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		kind     classify.Kind
		mimeType string
		wantCat  classify.Category
		wantExt  string
	}{
		{"inline photo ignores mime", classify.KindPhoto, "video/mp4", classify.CategoryPhoto, ".jpg"},
		{"video mp4", classify.KindVideo, "video/mp4", classify.CategoryVideo, ".mp4"},
		{"video matroska", classify.KindDocument, "video/x-matroska", classify.CategoryVideo, ".mkv"},
		{"audio mp3", classify.KindAudio, "audio/mpeg", classify.CategoryAudio, ".mp3"},
		{"image png via document", classify.KindDocument, "image/png", classify.CategoryPhoto, ".png"},
		{"unknown video subtype", classify.KindVideo, "video/x-fancy", classify.CategoryVideo, ".x-fancy"},
		{"application mime lands in other", classify.KindDocument, "application/pdf", classify.CategoryOther, ".pdf"},
		{"empty mime lands in other", classify.KindDocument, "", classify.CategoryOther, ".bin"},
		{"whitespace mime lands in other", classify.KindDocument, "   ", classify.CategoryOther, ".bin"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cat, ext := classify.Classify(tt.kind, tt.mimeType)
			if cat != tt.wantCat || ext != tt.wantExt {
				t.Errorf("Classify(%s, %q) = (%s, %q), want (%s, %q)",
					tt.kind, tt.mimeType, cat, ext, tt.wantCat, tt.wantExt)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind     classify.Kind
		mimeType string
		want     string
	}{
		{classify.KindPhoto, "", ".jpg"},
		{classify.KindVideo, "video/quicktime", ".mov"},
		{classify.KindAudio, "audio/x-flac", ".flac"},
		{classify.KindDocument, "application/zip", ".zip"},
		{classify.KindDocument, "malformed/", ".bin"},
		{classify.KindDocument, "", ".bin"},
	}
	for _, tt := range tests {
		if got := classify.Extension(tt.kind, tt.mimeType); got != tt.want {
			t.Errorf("Extension(%s, %q) = %q, want %q", tt.kind, tt.mimeType, got, tt.want)
		}
	}
}
