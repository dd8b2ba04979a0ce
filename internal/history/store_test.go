package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/history"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
)

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.NewStore(filepath.Join(t.TempDir(), "data", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func placedResult(title string, placedAt time.Time) ingest.Result {
	return ingest.Result{
		ID:        uuid.NewString(),
		MessageID: "1",
		GroupID:   "g1",
		Category:  classify.CategoryVideo,
		Title:     title,
		Intro:     "intro",
		FileName:  title + ".mp4",
		Path:      "/data/" + title + ".mp4",
		Directory: "/data",
		PlacedAt:  placedAt,
	}
}

func TestStoreRecordAndRecent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, placedResult("Older", base)))
	require.NoError(t, store.Record(ctx, placedResult("Newer", base.Add(time.Hour))))

	results, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Newest first.
	assert.Equal(t, "Newer", results[0].Title)
	assert.Equal(t, "Older", results[1].Title)
	assert.Equal(t, classify.CategoryVideo, results[0].Category)
	assert.Equal(t, "g1", results[0].GroupID)
	assert.Equal(t, "intro", results[0].Intro)
}

func TestStoreRecentLimit(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, placedResult("t", base.Add(time.Duration(i)*time.Minute))))
	}

	results, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Non-positive limits fall back to the default instead of erroring.
	results, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestStoreRecentEmpty(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	results, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
