package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier pushes notification copies to linked Telegram chats.
// Every send is best effort: failures are logged and dropped.
type Notifier struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

func NewNotifier(token string, log *zap.Logger) (*Notifier, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Notifier{api: api, log: log}, nil
}

func (n *Notifier) Push(ctx context.Context, chatID int64, text string) {
	if n == nil || n.api == nil || chatID == 0 || strings.TrimSpace(text) == "" {
		return
	}
	if ctx.Err() != nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warn("telegram push failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
