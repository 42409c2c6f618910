package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// StartPolling begins long-polling for Telegram commands. Only messages from
// the configured chat are handled. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update, handler)
		}
	}
}

func (t *TelegramNotifier) handleUpdate(ctx context.Context, update tgbotapi.Update, handler CommandHandler) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.Chat.ID != t.chatID {
		log.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring message from unknown chat")
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	log.Info().Str("command", text).Msg("received command")
	reply := handler(ctx, text)
	if reply == "" {
		return
	}
	if err := t.sendTo(msg.Chat.ID, reply); err != nil {
		log.Error().Err(err).Msg("send reply")
	}
}
