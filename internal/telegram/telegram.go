// Package telegram delivers posts and alerts to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"

	"fb_bot/internal/model"
)

// Server-imposed length limits.
const (
	maxMessageLen = 4096
	maxCaptionLen = 1024
)

const truncationMarker = "\n(...)"

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender sends posts to a single configured chat.
type Sender struct {
	api       telegramAPI
	chatID    int64
	log       *slog.Logger
	retryBase time.Duration
}

// New creates a Sender with the given bot token and destination chat.
func New(token string, chatID int64, log *slog.Logger) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Sender{api: api, chatID: chatID, log: log, retryBase: 2 * time.Second}, nil
}

// SendPost delivers one post. When the post carries images the first one
// is sent as a photo with the post text as caption; if photo delivery
// fails the post falls back to a plain text message. An error is
// returned only when every form of delivery failed, so the caller can
// leave the post unmarked and retry it next cycle.
func (s *Sender) SendPost(ctx context.Context, p model.Post) error {
	text := formatPost(p)

	if len(p.Images) > 0 {
		photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileURL(p.Images[0]))
		photo.Caption = truncate(text, maxCaptionLen)
		err := s.send(ctx, photo)
		if err == nil {
			return nil
		}
		s.log.Warn("photo delivery failed, falling back to text",
			"post_id", p.ID, "error", err)
	}

	msg := tgbotapi.NewMessage(s.chatID, truncate(text, maxMessageLen))
	return s.send(ctx, msg)
}

// SendAlert sends an operational warning to the chat.
func (s *Sender) SendAlert(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(s.chatID, truncate(text, maxMessageLen))
	msg.DisableWebPagePreview = true
	return s.send(ctx, msg)
}

// send submits one API call, retrying transient failures with
// exponential backoff.
func (s *Sender) send(ctx context.Context, c tgbotapi.Chattable) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := s.api.Send(c); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func formatPost(p model.Post) string {
	var b strings.Builder
	if p.PageName != "" {
		fmt.Fprintf(&b, "[%s]\n\n", p.PageName)
	}
	b.WriteString(p.Text)
	if p.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Link)
	}
	return b.String()
}

// truncate shortens s to at most max runes, ending with a visible
// truncation marker. Messages are never silently dropped for length.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	marker := []rune(truncationMarker)
	return string(runes[:max-len(marker)]) + truncationMarker
}
