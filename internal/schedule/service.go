// Package schedule sends configured messages on cron schedules.
package schedule

import (
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/CrushDope/Telegram-Assistant/internal/config"
)

// Sender delivers a scheduled message to a chat.
type Sender interface {
	SendText(chatID int64, text string) error
}

// Service owns the cron runner for the configured scheduled messages.
type Service struct {
	logger  *slog.Logger
	entries []config.ScheduledMessage
	sender  Sender
	cron    *cron.Cron
}

func NewService(log *slog.Logger, entries []config.ScheduledMessage, sender Sender) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		logger:  log.With(slog.String("service", "schedule")),
		entries: entries,
		sender:  sender,
		cron:    cron.New(),
	}
}

// Register adds every valid entry to the cron runner and returns the
// number scheduled. Invalid cron expressions are logged and skipped so
// one bad entry cannot take down the rest.
func (s *Service) Register() int {
	scheduled := 0
	for _, entry := range s.entries {
		entry := entry
		if strings.TrimSpace(entry.Cron) == "" || entry.ChatID == 0 {
			continue
		}
		_, err := s.cron.AddFunc(entry.Cron, func() {
			if err := s.sender.SendText(entry.ChatID, entry.Text); err != nil {
				s.logger.Error("send scheduled message failed",
					slog.Int64("chat_id", entry.ChatID),
					slog.Any("error", err),
				)
			}
		})
		if err != nil {
			s.logger.Warn("skip invalid schedule",
				slog.String("cron", entry.Cron),
				slog.Any("error", err),
			)
			continue
		}
		scheduled++
	}
	return scheduled
}

// Start begins firing registered entries.
func (s *Service) Start() {
	count := s.Register()
	if count == 0 {
		return
	}
	s.logger.Info("scheduled messages started", slog.Int("count", count))
	s.cron.Start()
}

// Stop halts the runner and waits for in-flight jobs.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}
