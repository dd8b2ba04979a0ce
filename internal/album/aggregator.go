// Package album buffers media-group members and flushes each group
// through the pipeline once its debounce window elapses.
package album

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
)

// DefaultDebounce is the quiet period after a group's first member.
const DefaultDebounce = 3 * time.Second

// Batcher drains one buffered album through the media pipeline.
type Batcher interface {
	ProcessBatch(ctx context.Context, atts []ingest.Attachment) ingest.BatchResult
}

// Aggregator owns the group-id to buffer mapping. A group is created on
// its first member, accepts appends while buffering, and is removed the
// moment its flush drains it; members of the same group id arriving
// after that start a new, independent group.
type Aggregator struct {
	logger   *slog.Logger
	batcher  Batcher
	debounce time.Duration

	mu     sync.Mutex
	groups map[string]*group

	onFlush func(ingest.BatchResult)
}

type group struct {
	items []ingest.Attachment
}

func NewAggregator(log *slog.Logger, batcher Batcher, debounce time.Duration) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Aggregator{
		logger:   log.With(slog.String("service", "album")),
		batcher:  batcher,
		debounce: debounce,
		groups:   make(map[string]*group),
	}
}

// SetFlushObserver registers a callback invoked with every group
// summary, success or failure.
func (a *Aggregator) SetFlushObserver(fn func(ingest.BatchResult)) {
	a.onFlush = fn
}

// Add buffers one album member. The first member of a fresh group id
// schedules the group's single debounce task; later members only
// append. The window counts from the first member and is not reset.
func (a *Aggregator) Add(ctx context.Context, att ingest.Attachment) {
	a.mu.Lock()
	if g, ok := a.groups[att.GroupID]; ok {
		g.items = append(g.items, att)
		a.mu.Unlock()
		return
	}
	a.groups[att.GroupID] = &group{items: []ingest.Attachment{att}}
	a.mu.Unlock()

	go a.flushAfter(ctx, att.GroupID)
}

// Pending reports buffered group ids and their current member counts.
func (a *Aggregator) Pending() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending := make(map[string]int, len(a.groups))
	for id, g := range a.groups {
		pending[id] = len(g.items)
	}
	return pending
}

// flushAfter sleeps out the debounce window, then drains the group.
// The task is never cancelled: on shutdown it flushes what it has
// rather than dropping buffered members.
func (a *Aggregator) flushAfter(ctx context.Context, groupID string) {
	timer := time.NewTimer(a.debounce)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	items := a.take(groupID)
	if len(items) == 0 {
		// A scheduled flush always has at least its first member; an
		// empty buffer means the mapping invariant was broken.
		a.logger.Error("flush scheduled for empty album buffer", slog.String("group_id", groupID))
		return
	}

	summary := a.batcher.ProcessBatch(ctx, items)
	summary.GroupID = groupID
	if summary.AllFailed() {
		a.logger.Error("album flush failed for every member",
			slog.String("group_id", groupID),
			slog.Int("failed", len(summary.Failed)),
		)
	} else {
		a.logger.Info("album flushed",
			slog.String("group_id", groupID),
			slog.String("title", summary.Title),
			slog.Int("placed", len(summary.Items)),
			slog.Int("failed", len(summary.Failed)),
		)
	}
	if a.onFlush != nil {
		a.onFlush(summary)
	}
}

func (a *Aggregator) take(groupID string) []ingest.Attachment {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.groups[groupID]
	if !ok {
		return nil
	}
	delete(a.groups, groupID)
	return g.items
}
