// Package placement relocates downloaded temporary files to their final
// location on the content store.
package placement

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Error describes a failed placement.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Service moves files into place, creating destination directories on
// demand.
type Service struct {
	logger *slog.Logger
}

func NewService(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{logger: log.With(slog.String("service", "placement"))}
}

// Place moves tempPath to finalPath, creating missing ancestor
// directories. A same-filesystem rename is attempted first, falling
// back to copy-then-delete across filesystem boundaries. The move
// either fully succeeds (source gone, destination present) or fully
// fails with the source untouched.
func (s *Service) Place(_ context.Context, tempPath, finalPath string) (string, error) {
	if _, err := os.Stat(tempPath); err != nil {
		return "", &Error{Reason: "source file missing", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", &Error{Reason: "create destination directory", Err: err}
	}
	if err := os.Rename(tempPath, finalPath); err == nil {
		return finalPath, nil
	}
	s.logger.Debug("rename failed, copying instead",
		slog.String("source", tempPath),
		slog.String("destination", finalPath),
	)
	if err := copyThenRemove(tempPath, finalPath); err != nil {
		return "", err
	}
	return finalPath, nil
}

// copyThenRemove stages the copy next to the final path so the final
// name appears in one rename, then removes the source.
func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &Error{Reason: "open source", Err: err}
	}
	defer func() {
		_ = in.Close()
	}()

	part := dst + ".part"
	out, err := os.Create(part)
	if err != nil {
		return &Error{Reason: "create staging file", Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(part)
		return &Error{Reason: "copy to staging file", Err: err}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(part)
		return &Error{Reason: "flush staging file", Err: err}
	}
	if err := os.Rename(part, dst); err != nil {
		_ = os.Remove(part)
		return &Error{Reason: "promote staging file", Err: err}
	}
	if err := os.Remove(src); err != nil {
		// Keep the all-or-nothing contract: undo the copy so the
		// source remains the single authoritative file.
		_ = os.Remove(dst)
		return &Error{Reason: "remove source after copy", Err: err}
	}
	return nil
}
