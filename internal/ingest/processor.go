// Package ingest runs the per-attachment media pipeline: classify,
// title, download, name, resolve, place.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CrushDope/Telegram-Assistant/internal/catalog"
	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/config"
	"github.com/CrushDope/Telegram-Assistant/internal/naming"
	"github.com/CrushDope/Telegram-Assistant/internal/placement"
)

// Processor turns inbound attachments into placed files. The same
// pipeline serves standalone messages and album flushes; the batch path
// only adds a shared naming state and summary bookkeeping.
type Processor struct {
	logger     *slog.Logger
	storage    config.StorageConfig
	downloader Downloader
	placer     *placement.Service
	recorder   Recorder
	now        func() time.Time
}

func NewProcessor(log *slog.Logger, storage config.StorageConfig, downloader Downloader, placer *placement.Service) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		logger:     log.With(slog.String("service", "ingest")),
		storage:    storage,
		downloader: downloader,
		placer:     placer,
		now:        time.Now,
	}
}

// SetRecorder attaches an optional placement ledger. Recording failures
// are logged, never propagated.
func (p *Processor) SetRecorder(recorder Recorder) {
	p.recorder = recorder
}

// ProcessSingle runs the pipeline for one standalone message.
func (p *Processor) ProcessSingle(ctx context.Context, att Attachment) (Result, error) {
	title, intro := catalog.Extract(att.Caption)
	if title == "" {
		title = catalog.FallbackTitle(att.FileName, p.now())
	}
	return p.processItem(ctx, att, title, intro, p.newState())
}

// ProcessBatch drains one buffered album. All members share one title
// and one naming state, so the first photo across the whole album takes
// the primary-image name. A member's failure is isolated: it is logged,
// recorded in the summary, and does not abort its siblings.
func (p *Processor) ProcessBatch(ctx context.Context, atts []Attachment) BatchResult {
	now := p.now()
	var title, intro string
	for _, att := range atts {
		if t, i := catalog.Extract(att.Caption); t != "" {
			title, intro = t, i
			break
		}
	}
	if title == "" {
		var declared string
		for _, att := range atts {
			if strings.TrimSpace(att.FileName) != "" {
				declared = att.FileName
				break
			}
		}
		title = catalog.FallbackTitle(declared, now)
	}

	batch := BatchResult{
		Title:  title,
		Intro:  intro,
		Counts: make(map[classify.Category]int),
	}
	if len(atts) > 0 {
		batch.ChatID = atts[0].ChatID
		batch.GroupID = atts[0].GroupID
	}
	state := p.newState()
	for _, att := range atts {
		res, err := p.processItem(ctx, att, title, intro, state)
		if err != nil {
			if errors.Is(err, ErrSkipped) {
				p.logger.Info("album member skipped",
					slog.String("message_id", att.MessageID),
					slog.String("file_name", att.FileName),
				)
			} else {
				p.logger.Error("album member failed",
					slog.String("message_id", att.MessageID),
					slog.Any("error", err),
				)
			}
			batch.Failed = append(batch.Failed, ItemError{MessageID: att.MessageID, Err: err})
			continue
		}
		batch.Items = append(batch.Items, res)
		batch.Counts[res.Category]++
		if batch.Directory == "" {
			batch.Directory = res.Directory
		}
	}
	return batch
}

func (p *Processor) newState() *naming.State {
	if p.storage.Layout == config.LayoutFlat {
		return naming.NewStateWithoutPrimary()
	}
	return naming.NewState()
}

// shouldSkip filters gallery noise: documents whose declared name
// starts with "photo_" are thumbnails re-sent by source channels.
func shouldSkip(att Attachment) bool {
	return att.Kind == classify.KindDocument && strings.HasPrefix(att.FileName, "photo_")
}

func (p *Processor) processItem(ctx context.Context, att Attachment, title, intro string, state *naming.State) (Result, error) {
	if shouldSkip(att) {
		return Result{}, fmt.Errorf("%w: %s", ErrSkipped, att.FileName)
	}
	category, ext := classify.Classify(att.Kind, att.MimeType)

	// Download before touching the destination so a failed download
	// leaves no stray directories behind.
	tempPath, err := p.downloader.Download(ctx, att, p.storage.TempDir)
	if err != nil {
		return Result{}, fmt.Errorf("download attachment: %w", err)
	}

	dir := p.directoryFor(category, title)
	now := p.now()
	name, exempt := naming.FileNameFor(dir, category, title, att.FileName, ext, now, state)
	finalPath := state.Resolve(dir, name, exempt)

	placed, err := p.placer.Place(ctx, tempPath, finalPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return Result{}, err
	}

	res := Result{
		ID:        uuid.NewString(),
		MessageID: att.MessageID,
		GroupID:   att.GroupID,
		Category:  category,
		Title:     title,
		Intro:     intro,
		FileName:  filepath.Base(placed),
		Path:      placed,
		Directory: dir,
		PlacedAt:  now,
	}
	if p.recorder != nil {
		if err := p.recorder.Record(ctx, res); err != nil {
			p.logger.Warn("record placement failed", slog.Any("error", err))
		}
	}
	p.logger.Info("media placed",
		slog.String("category", string(category)),
		slog.String("title", title),
		slog.String("path", placed),
	)
	return res, nil
}

// directoryFor maps a category to its destination directory. In the
// canonical title_dir layout video and photo share a per-title
// subdirectory under the videos base; the flat layout files every
// category into its own directory.
func (p *Processor) directoryFor(category classify.Category, title string) string {
	switch category {
	case classify.CategoryVideo:
		if p.storage.Layout == config.LayoutFlat {
			return p.storage.VideosDir()
		}
		return filepath.Join(p.storage.VideosDir(), title)
	case classify.CategoryPhoto:
		if p.storage.Layout == config.LayoutFlat {
			return p.storage.PhotosDir()
		}
		return filepath.Join(p.storage.VideosDir(), title)
	case classify.CategoryAudio:
		return p.storage.AudiosDir()
	}
	return p.storage.OthersDir()
}
