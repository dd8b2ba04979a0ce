package schedule_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CrushDope/Telegram-Assistant/internal/config"
	"github.com/CrushDope/Telegram-Assistant/internal/schedule"
)

type captureSender struct {
	mu    sync.Mutex
	sent  []string
	chats []int64
}

func (s *captureSender) SendText(chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append(s.chats, chatID)
	s.sent = append(s.sent, text)
	return nil
}

func TestRegisterCountsValidEntries(t *testing.T) {
	t.Parallel()
	entries := []config.ScheduledMessage{
		{Cron: "0 9 * * *", ChatID: 1, Text: "morning"},
		{Cron: "*/5 * * * *", ChatID: 2, Text: "ping"},
	}
	svc := schedule.NewService(nil, entries, &captureSender{})
	assert.Equal(t, 2, svc.Register())
}

func TestRegisterSkipsInvalidEntries(t *testing.T) {
	t.Parallel()
	entries := []config.ScheduledMessage{
		{Cron: "", ChatID: 1, Text: "no schedule"},
		{Cron: "0 9 * * *", ChatID: 0, Text: "no chat"},
		{Cron: "not a cron spec", ChatID: 3, Text: "bad spec"},
		{Cron: "0 12 * * *", ChatID: 4, Text: "valid"},
	}
	svc := schedule.NewService(nil, entries, &captureSender{})
	assert.Equal(t, 1, svc.Register())
}

func TestRegisterEmpty(t *testing.T) {
	t.Parallel()
	svc := schedule.NewService(nil, nil, &captureSender{})
	assert.Equal(t, 0, svc.Register())
}
