package placement_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrushDope/Telegram-Assistant/internal/placement"
)

func TestPlaceMovesFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	src := filepath.Join(root, "incoming.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dst := filepath.Join(root, "videos", "My Movie", "My Movie.mp4")
	svc := placement.NewService(nil)

	placed, err := svc.Place(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, dst, placed)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be gone after placement")
}

func TestPlaceMissingSource(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	svc := placement.NewService(nil)

	_, err := svc.Place(context.Background(), filepath.Join(root, "nope.bin"), filepath.Join(root, "out.bin"))
	require.Error(t, err)

	var perr *placement.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "source file missing", perr.Reason)

	// A failed placement must not leave destination directories behind
	// either; the destination dir here is the temp root, which exists,
	// so only check the file.
	_, statErr := os.Stat(filepath.Join(root, "out.bin"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlaceOverwritesExisting(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	src := filepath.Join(root, "new.jpg")
	dst := filepath.Join(root, "fanart.jpg")
	require.NoError(t, os.WriteFile(src, []byte("new cover"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old cover"), 0o644))

	svc := placement.NewService(nil)
	placed, err := svc.Place(context.Background(), src, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(placed)
	require.NoError(t, err)
	assert.Equal(t, "new cover", string(data))
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("disk full")
	err := &placement.Error{Reason: "copy to staging file", Err: inner}
	assert.Equal(t, "copy to staging file: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}
