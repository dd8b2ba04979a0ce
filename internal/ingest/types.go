package ingest

import (
	"context"
	"time"

	"github.com/CrushDope/Telegram-Assistant/internal/classify"
)

// Attachment is one inbound media item as delivered by the chat
// protocol client. It is immutable and consumed exactly once.
type Attachment struct {
	MessageID string
	ChatID    int64
	Kind      classify.Kind
	MimeType  string
	// FileName is the declared file name, often empty.
	FileName string
	// GroupID is the album grouping token, empty for standalone messages.
	GroupID string
	Caption string
	// FileID is the protocol-level handle the Downloader needs.
	FileID string
}

// Result records one successfully placed attachment.
type Result struct {
	ID        string            `json:"id"`
	MessageID string            `json:"message_id"`
	GroupID   string            `json:"group_id,omitempty"`
	Category  classify.Category `json:"category"`
	Title     string            `json:"title"`
	Intro     string            `json:"intro,omitempty"`
	FileName  string            `json:"file_name"`
	Path      string            `json:"path"`
	Directory string            `json:"directory"`
	PlacedAt  time.Time         `json:"placed_at"`
}

// ItemError pairs a failed album member with its error.
type ItemError struct {
	MessageID string
	Err       error
}

// BatchResult is the consolidated summary of one album flush.
type BatchResult struct {
	GroupID   string
	ChatID    int64
	Title     string
	Intro     string
	Directory string
	Counts    map[classify.Category]int
	Items     []Result
	Failed    []ItemError
}

// AllFailed reports whether the flush produced no placements at all.
func (b BatchResult) AllFailed() bool {
	return len(b.Items) == 0 && len(b.Failed) > 0
}

// Downloader retrieves the attachment bytes into destDir and returns
// the local temporary file path.
type Downloader interface {
	Download(ctx context.Context, att Attachment, destDir string) (string, error)
}

// Recorder persists placement results for later inspection.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}
