// Package fetcher pulls videos from external platforms through an
// opaque fetch-by-URL interface.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/CrushDope/Telegram-Assistant/internal/config"
)

// Fetched is the outcome of one external platform download.
type Fetched struct {
	Title     string
	LocalPath string
}

// Fetcher retrieves a remote video URL into a local file.
type Fetcher interface {
	Supports(url string) bool
	Fetch(ctx context.Context, url string) (Fetched, error)
}

var supportedHosts = []string{
	"youtube.com/",
	"youtu.be/",
	"douyin.com/",
}

// YTDLP shells out to the yt-dlp binary.
type YTDLP struct {
	logger  *slog.Logger
	binary  string
	format  string
	cookies string
	tempDir string
}

func NewYTDLP(log *slog.Logger, cfg config.FetchConfig, tempDir string) *YTDLP {
	if log == nil {
		log = slog.Default()
	}
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = config.DefaultFetchBinary
	}
	format := strings.TrimSpace(cfg.Format)
	if format == "" {
		format = config.DefaultFetchFormat
	}
	return &YTDLP{
		logger:  log.With(slog.String("service", "fetcher")),
		binary:  binary,
		format:  format,
		cookies: strings.TrimSpace(cfg.Cookies),
		tempDir: tempDir,
	}
}

// Supports reports whether the URL belongs to a platform this fetcher
// can download from.
func (y *YTDLP) Supports(url string) bool {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}
	for _, host := range supportedHosts {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

// Fetch downloads the URL into the temp directory and returns the
// video title alongside the local file path.
func (y *YTDLP) Fetch(ctx context.Context, url string) (Fetched, error) {
	if err := os.MkdirAll(y.tempDir, 0o755); err != nil {
		return Fetched{}, fmt.Errorf("create temp directory: %w", err)
	}
	id := uuid.NewString()
	args := []string{
		"-f", y.format,
		"-o", filepath.Join(y.tempDir, id+".%(ext)s"),
		"--no-playlist",
		"--print", "title",
		"--no-simulate",
	}
	if y.cookies != "" {
		args = append(args, "--cookies", y.cookies)
	}
	args = append(args, url)

	y.logger.Info("fetching external video", slog.String("url", url))
	out, err := exec.CommandContext(ctx, y.binary, args...).Output()
	if err != nil {
		return Fetched{}, fmt.Errorf("run %s: %w", y.binary, err)
	}
	title := strings.TrimSpace(string(out))

	matches, err := filepath.Glob(filepath.Join(y.tempDir, id+".*"))
	if err != nil || len(matches) == 0 {
		return Fetched{}, fmt.Errorf("%s produced no output file for %s", y.binary, url)
	}
	return Fetched{Title: title, LocalPath: matches[0]}, nil
}
