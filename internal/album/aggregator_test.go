package album_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrushDope/Telegram-Assistant/internal/album"
	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
)

// captureBatcher records every flush and signals on flushed.
type captureBatcher struct {
	mu      sync.Mutex
	batches [][]ingest.Attachment
	flushed chan struct{}
}

func newCaptureBatcher() *captureBatcher {
	return &captureBatcher{flushed: make(chan struct{}, 8)}
}

func (b *captureBatcher) ProcessBatch(_ context.Context, atts []ingest.Attachment) ingest.BatchResult {
	b.mu.Lock()
	b.batches = append(b.batches, atts)
	b.mu.Unlock()
	b.flushed <- struct{}{}
	return ingest.BatchResult{
		Title: "t",
		Items: make([]ingest.Result, len(atts)),
	}
}

func (b *captureBatcher) snapshot() [][]ingest.Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]ingest.Attachment, len(b.batches))
	copy(out, b.batches)
	return out
}

func waitFlush(t *testing.T, b *captureBatcher) {
	t.Helper()
	select {
	case <-b.flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for album flush")
	}
}

func att(groupID, messageID string) ingest.Attachment {
	return ingest.Attachment{
		MessageID: messageID,
		GroupID:   groupID,
		Kind:      classify.KindPhoto,
	}
}

func TestAggregatorFlushesWholeGroupOnce(t *testing.T) {
	t.Parallel()
	batcher := newCaptureBatcher()
	agg := album.NewAggregator(nil, batcher, 50*time.Millisecond)

	ctx := context.Background()
	agg.Add(ctx, att("g1", "1"))
	agg.Add(ctx, att("g1", "2"))
	agg.Add(ctx, att("g1", "3"))

	waitFlush(t, batcher)
	batches := batcher.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 3)
	assert.Equal(t, "1", batches[0][0].MessageID)
	assert.Equal(t, "3", batches[0][2].MessageID)
}

func TestAggregatorLateArrivalStartsNewGroup(t *testing.T) {
	t.Parallel()
	batcher := newCaptureBatcher()
	agg := album.NewAggregator(nil, batcher, 30*time.Millisecond)

	ctx := context.Background()
	agg.Add(ctx, att("g1", "1"))
	waitFlush(t, batcher)

	// Same group id after the flush: a fresh, independent group.
	agg.Add(ctx, att("g1", "2"))
	waitFlush(t, batcher)

	batches := batcher.snapshot()
	require.Len(t, batches, 2)
	assert.Equal(t, "1", batches[0][0].MessageID)
	assert.Equal(t, "2", batches[1][0].MessageID)
}

func TestAggregatorSeparateGroups(t *testing.T) {
	t.Parallel()
	batcher := newCaptureBatcher()
	agg := album.NewAggregator(nil, batcher, 30*time.Millisecond)

	ctx := context.Background()
	agg.Add(ctx, att("g1", "1"))
	agg.Add(ctx, att("g2", "2"))

	waitFlush(t, batcher)
	waitFlush(t, batcher)

	batches := batcher.snapshot()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 1)
	assert.Len(t, batches[1], 1)
}

func TestAggregatorPending(t *testing.T) {
	t.Parallel()
	batcher := newCaptureBatcher()
	agg := album.NewAggregator(nil, batcher, time.Minute)

	ctx := context.Background()
	agg.Add(ctx, att("g1", "1"))
	agg.Add(ctx, att("g1", "2"))
	agg.Add(ctx, att("g2", "3"))

	pending := agg.Pending()
	assert.Equal(t, map[string]int{"g1": 2, "g2": 1}, pending)
}

func TestAggregatorCancelledContextStillFlushes(t *testing.T) {
	t.Parallel()
	batcher := newCaptureBatcher()
	agg := album.NewAggregator(nil, batcher, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	agg.Add(ctx, att("g1", "1"))
	cancel()

	// Shutdown flushes buffered members instead of dropping them.
	waitFlush(t, batcher)
	batches := batcher.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Empty(t, agg.Pending())
}

func TestAggregatorFlushObserver(t *testing.T) {
	t.Parallel()
	batcher := newCaptureBatcher()
	agg := album.NewAggregator(nil, batcher, 30*time.Millisecond)

	observed := make(chan ingest.BatchResult, 1)
	agg.SetFlushObserver(func(summary ingest.BatchResult) {
		observed <- summary
	})

	agg.Add(context.Background(), att("g9", "1"))

	select {
	case summary := <-observed:
		assert.Equal(t, "g9", summary.GroupID)
	case <-time.After(2 * time.Second):
		t.Fatal("flush observer never invoked")
	}
}
