package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
)

// attachmentFromMessage maps a Telegram message onto one pipeline
// attachment. Telegram delivers albums as separate messages sharing a
// MediaGroupID, so a message never carries more than one media item of
// interest.
func attachmentFromMessage(msg *tgbotapi.Message) (ingest.Attachment, bool) {
	if msg == nil {
		return ingest.Attachment{}, false
	}
	att := ingest.Attachment{
		MessageID: strconv.Itoa(msg.MessageID),
		GroupID:   msg.MediaGroupID,
		Caption:   strings.TrimSpace(msg.Caption),
	}
	if msg.Chat != nil {
		att.ChatID = msg.Chat.ID
	}

	switch {
	case len(msg.Photo) > 0:
		photo := pickPhoto(msg.Photo)
		att.Kind = classify.KindPhoto
		att.FileID = photo.FileID
	case msg.Video != nil:
		att.Kind = classify.KindVideo
		att.FileID = msg.Video.FileID
		att.FileName = msg.Video.FileName
		att.MimeType = msg.Video.MimeType
	case msg.Audio != nil:
		att.Kind = classify.KindAudio
		att.FileID = msg.Audio.FileID
		att.FileName = msg.Audio.FileName
		att.MimeType = msg.Audio.MimeType
	case msg.Voice != nil:
		att.Kind = classify.KindAudio
		att.FileID = msg.Voice.FileID
		att.MimeType = msg.Voice.MimeType
	case msg.Document != nil:
		att.Kind = classify.KindDocument
		att.FileID = msg.Document.FileID
		att.FileName = msg.Document.FileName
		att.MimeType = msg.Document.MimeType
	default:
		return ingest.Attachment{}, false
	}
	return att, true
}

// pickPhoto selects the largest rendition of an inline photo.
func pickPhoto(items []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	if len(items) == 0 {
		return tgbotapi.PhotoSize{}
	}
	best := items[0]
	for _, item := range items[1:] {
		if item.FileSize > best.FileSize {
			best = item
			continue
		}
		if item.Width*item.Height > best.Width*best.Height {
			best = item
		}
	}
	return best
}
