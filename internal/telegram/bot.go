// Package telegram is the chat-protocol edge: it long-polls for
// updates, turns messages into pipeline attachments, downloads
// attachment bytes, and reports outcomes back to the chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/CrushDope/Telegram-Assistant/internal/album"
	"github.com/CrushDope/Telegram-Assistant/internal/catalog"
	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/config"
	"github.com/CrushDope/Telegram-Assistant/internal/fetcher"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
	"github.com/CrushDope/Telegram-Assistant/internal/naming"
	"github.com/CrushDope/Telegram-Assistant/internal/placement"
)

// sender is the outbound slice of the bot API.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot connects the media pipeline to the Telegram Bot API.
type Bot struct {
	logger      *slog.Logger
	api         *tgbotapi.BotAPI
	send        sender
	client      *http.Client
	storage     config.StorageConfig
	pollTimeout int

	processor *ingest.Processor
	albums    *album.Aggregator
	fetch     fetcher.Fetcher
	placer    *placement.Service
}

func NewBot(log *slog.Logger, cfg config.TelegramConfig, storage config.StorageConfig, placer *placement.Service) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	timeout := cfg.PollTimeoutSeconds
	if timeout <= 0 {
		timeout = config.DefaultPollTimeout
	}
	return &Bot{
		logger:      log.With(slog.String("service", "telegram")),
		api:         api,
		send:        api,
		client:      &http.Client{Timeout: 60 * time.Second},
		storage:     storage,
		pollTimeout: timeout,
	}, nil
}

// SetPipeline attaches the per-item processor and the album aggregator.
func (b *Bot) SetPipeline(processor *ingest.Processor, albums *album.Aggregator) {
	b.processor = processor
	b.albums = albums
}

// SetFetcher attaches the external platform downloader.
func (b *Bot) SetFetcher(fetch fetcher.Fetcher) {
	b.fetch = fetch
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)
	b.logger.Info("start", slog.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			// Drain so the library's polling goroutine can exit; an
			// in-flight long poll otherwise keeps the old getUpdates
			// session alive.
			for range updates {
			}
			b.logger.Info("stop")
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return
			}
			if update.Message == nil {
				continue
			}
			if b.enqueueAlbum(ctx, update.Message) {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// enqueueAlbum buffers an album member from the Run loop itself, not a
// goroutine, so buffer order inside a group matches arrival order. No
// I/O happens before the append.
func (b *Bot) enqueueAlbum(ctx context.Context, msg *tgbotapi.Message) bool {
	att, ok := attachmentFromMessage(msg)
	if !ok || att.GroupID == "" {
		return false
	}
	if b.albums == nil {
		b.logger.Error("pipeline not configured")
		return true
	}
	// The flush observer reports for the whole group.
	b.albums.Add(ctx, att)
	return true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	att, ok := attachmentFromMessage(msg)
	if !ok {
		if url := fetchableURL(b.fetch, msg.Text); url != "" {
			b.handleFetch(ctx, msg, url)
		}
		return
	}
	if b.processor == nil {
		b.logger.Error("pipeline not configured")
		return
	}

	res, err := b.processor.ProcessSingle(ctx, att)
	if err != nil {
		if errors.Is(err, ingest.ErrSkipped) {
			b.logger.Info("media skipped",
				slog.String("message_id", att.MessageID),
				slog.String("file_name", att.FileName),
			)
			b.reply(msg.Chat.ID, msg.MessageID, "Skipped "+att.FileName)
			return
		}
		b.logger.Error("process media failed",
			slog.String("message_id", att.MessageID),
			slog.Any("error", err),
		)
		b.reply(msg.Chat.ID, msg.MessageID, "Failed to save media: "+err.Error())
		return
	}
	b.reply(msg.Chat.ID, msg.MessageID, formatResult(res))
}

// NotifyBatch sends the consolidated album summary; registered as the
// aggregator's flush observer.
func (b *Bot) NotifyBatch(summary ingest.BatchResult) {
	if summary.ChatID == 0 {
		return
	}
	b.reply(summary.ChatID, 0, formatBatch(summary))
}

func (b *Bot) handleFetch(ctx context.Context, msg *tgbotapi.Message, url string) {
	fetched, err := b.fetch.Fetch(ctx, url)
	if err != nil {
		b.logger.Error("fetch failed", slog.String("url", url), slog.Any("error", err))
		b.reply(msg.Chat.ID, msg.MessageID, "Failed to fetch video: "+err.Error())
		return
	}
	title := catalog.Sanitize(fetched.Title)
	if title == "" {
		title = catalog.FallbackTitle("", time.Now())
	}
	dir := b.storage.FetchDir()
	name := title + filepath.Ext(fetched.LocalPath)
	finalPath := naming.NewState().Resolve(dir, name, false)
	placed, err := b.placer.Place(ctx, fetched.LocalPath, finalPath)
	if err != nil {
		b.logger.Error("place fetched video failed", slog.String("url", url), slog.Any("error", err))
		b.reply(msg.Chat.ID, msg.MessageID, "Failed to save video: "+err.Error())
		return
	}
	b.reply(msg.Chat.ID, msg.MessageID, fmt.Sprintf("Saved %s\n%s", title, placed))
}

// SetPlacer attaches the placement service used for fetched videos.
func (b *Bot) SetPlacer(placer *placement.Service) {
	b.placer = placer
}

// SendText implements schedule.Sender.
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.send.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) reply(chatID int64, replyTo int, text string) {
	message := tgbotapi.NewMessage(chatID, text)
	if replyTo > 0 {
		message.ReplyToMessageID = replyTo
	}
	if _, err := b.send.Send(message); err != nil {
		b.logger.Error("send reply failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

// Download implements ingest.Downloader using the bot file API.
func (b *Bot) Download(ctx context.Context, att ingest.Attachment, destDir string) (string, error) {
	downloadURL, err := b.api.GetFileDirectURL(att.FileID)
	if err != nil {
		return "", fmt.Errorf("resolve telegram file url: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("download attachment status: %d", resp.StatusCode)
	}

	tempPath := filepath.Join(destDir, uuid.NewString()+classify.Extension(att.Kind, att.MimeType))
	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tempPath, nil
}

func fetchableURL(fetch fetcher.Fetcher, text string) string {
	if fetch == nil {
		return ""
	}
	for _, field := range strings.Fields(strings.TrimSpace(text)) {
		if fetch.Supports(field) {
			return field
		}
	}
	return ""
}
