// Package telegram delivers generated digests to a Telegram channel.
package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/models"
)

// Telegram rejects messages above 4096 characters.
const maxMessageLen = 4000

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewBot(token string, chatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, chatID: chatID, logger: logger}, nil
}

// SendDigest broadcasts a digest summary to the configured chat.
func (b *Bot) SendDigest(digest models.Digest) error {
	msg := tgbotapi.NewMessage(b.chatID, formatDigestMessage(digest))
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("sending digest to telegram: %w", err)
	}
	b.logger.Info("digest sent to telegram",
		zap.String("date", digest.Date), zap.Int64("chat", b.chatID))
	return nil
}

func formatDigestMessage(digest models.Digest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📰 %s\n\n", digest.Title)
	fmt.Fprintf(&sb, "Analyzed %d articles, featuring the top %d.\n\n",
		digest.Stats.Analyzed, digest.Stats.Featured)

	for i, article := range digest.Articles {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%s, %.1f/10)\n%s\n\n",
			i+1, article.Title, article.Source, article.Score*10, article.URL)
	}

	sb.WriteString("Full digest: https://sota.ai/newsletter")

	text := sb.String()
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	return text
}
