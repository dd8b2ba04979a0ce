// Package naming decides final file names on the content store: the
// primary-image convention, title-as-filename for video, timestamp
// fallbacks, and collision-free path resolution.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CrushDope/Telegram-Assistant/internal/catalog"
	"github.com/CrushDope/Telegram-Assistant/internal/classify"
)

// PrimaryImageName is the reserved cover file name inside a title
// directory. It is the only name allowed to overwrite an existing file.
const PrimaryImageName = "fanart.jpg"

// State carries the mutable naming counters for one processing run
// (a single message or one album flush). It is never shared across
// concurrent runs.
type State struct {
	primarySettled bool
	primaryAllowed bool
	photoSeq       int
	reserved       map[string]struct{}
}

// NewState returns a fresh run state with the primary-image convention
// enabled.
func NewState() *State {
	return &State{primaryAllowed: true, reserved: make(map[string]struct{})}
}

// NewStateWithoutPrimary returns a run state for layouts with no
// per-title directory, where no file may claim the reserved cover name.
func NewStateWithoutPrimary() *State {
	return &State{reserved: make(map[string]struct{})}
}

// claimPrimary reports whether the primary-image slot for dir is still
// open and claims it for the caller. The on-disk existence test is a
// plain stat and is not atomic with the later write; two runs deriving
// the same title can both observe an open slot, and the second one
// overwrites the first.
func (s *State) claimPrimary(dir string) bool {
	if !s.primaryAllowed || s.primarySettled {
		return false
	}
	s.primarySettled = true
	if _, err := os.Stat(filepath.Join(dir, PrimaryImageName)); err == nil {
		return false
	}
	return true
}

// declaredFileName reduces a sender-supplied file name to a safe base
// name. Declared names arrive from arbitrary senders; path separators
// and traversal segments must never reach the store.
func declaredFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return catalog.Sanitize(filepath.Base(name))
}

func (s *State) nextPhotoSeq() int {
	s.photoSeq++
	return s.photoSeq
}

// FileNameFor produces the candidate file name for one attachment and
// reports whether that name is exempt from collision resolution (true
// only for the primary image). Rules, in priority order: video is
// always "<title><ext>"; the first photo of a run whose directory has
// no cover yet takes PrimaryImageName; later photos keep their declared
// base name or receive a sequential one; audio and everything else get a
// second-resolution timestamp name.
func FileNameFor(dir string, category classify.Category, title, declaredName, ext string, now time.Time, state *State) (string, bool) {
	switch category {
	case classify.CategoryVideo:
		return title + ext, false
	case classify.CategoryPhoto:
		if state.claimPrimary(dir) {
			return PrimaryImageName, true
		}
		if name := declaredFileName(declaredName); name != "" {
			return name, false
		}
		prefix := "fanart"
		if !state.primaryAllowed {
			prefix = "image_"
		}
		return fmt.Sprintf("%s%d%s", prefix, state.nextPhotoSeq(), ext), false
	}
	return "file_" + now.Format("150405") + ext, false
}

// Resolve turns a candidate file name into a final path in dir that is
// guaranteed unused. Exempt names are returned as-is even when the file
// exists. Otherwise a numeric suffix is appended before the extension
// and incremented until the path is free; paths already handed out
// during this run count as taken even before anything is written.
func (s *State) Resolve(dir, filename string, overwriteExempt bool) string {
	target := filepath.Join(dir, filename)
	if overwriteExempt {
		s.reserved[target] = struct{}{}
		return target
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for counter := 1; s.taken(target); counter++ {
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
	s.reserved[target] = struct{}{}
	return target
}

func (s *State) taken(path string) bool {
	if _, ok := s.reserved[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
