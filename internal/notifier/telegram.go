package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"StockLens/internal/metrics"
)

// maxMessageLen is Telegram's limit for a single text message.
const maxMessageLen = 4096

// Notifier delivers text messages to the operator chat.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// botAPI is the part of tgbotapi.BotAPI the notifier uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	bot     botAPI
	chatID  int64
	metrics *metrics.Metrics
	backoff time.Duration
}

// NewTelegramNotifier connects to the Bot API with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, m *metrics.Metrics) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: 60 * time.Second, Transport: transport}

	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("telegram bot authorized")
	return newTelegramNotifier(bot, id, m), nil
}

func newTelegramNotifier(bot botAPI, chatID int64, m *metrics.Metrics) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, metrics: m, backoff: time.Second}
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.sendTo(t.chatID, text)
}

func (t *TelegramNotifier) sendTo(chatID int64, text string) error {
	parts := splitMessage(text, maxMessageLen)
	for i, part := range parts {
		if err := t.sendPart(chatID, part); err != nil {
			t.metrics.Notification(err)
			return fmt.Errorf("send message part %d/%d: %w", i+1, len(parts), err)
		}
	}
	t.metrics.Notification(nil)
	return nil
}

func (t *TelegramNotifier) sendPart(chatID int64, part string) error {
	msg := tgbotapi.NewMessage(chatID, part)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// SendWithRetry sends a message with exponential backoff retry. Long
// messages are retried part by part, so delivered parts are not repeated.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	parts := splitMessage(text, maxMessageLen)
	for i, part := range parts {
		if err := t.retryPart(ctx, part, maxRetries); err != nil {
			t.metrics.Notification(err)
			if len(parts) > 1 {
				return fmt.Errorf("part %d/%d: %w", i+1, len(parts), err)
			}
			return err
		}
	}
	t.metrics.Notification(nil)
	return nil
}

func (t *TelegramNotifier) retryPart(ctx context.Context, part string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.sendPart(t.chatID, part)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := t.backoff * time.Duration(1<<uint(i))
		log.Warn().Err(err).
			Int("attempt", i+1).
			Int("max_attempts", maxRetries+1).
			Dur("backoff", backoff).
			Msg("telegram send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// NoopNotifier drops messages when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(text string) error {
	log.Debug().Int("len", len(text)).Msg("notification dropped, telegram disabled")
	return nil
}

func (n NoopNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return n.Send(text)
}

// splitMessage cuts text into chunks of at most limit bytes, preferring
// line boundaries. Lines longer than limit are cut by safeCut.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			n := safeCut(line, limit)
			parts = append(parts, line[:n])
			line = line[n:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// safeCut returns a cut position in (0, limit] that does not fall inside a
// UTF-8 sequence, an HTML tag or entity, or between an opening tag and its
// closing tag. It falls back to the nearest rune boundary when no such
// position exists.
func safeCut(s string, limit int) int {
	runeCut := limit
	for runeCut > 0 && !utf8.RuneStart(s[runeCut]) {
		runeCut--
	}
	if runeCut == 0 {
		// a single rune wider than limit; only possible for tiny limits
		_, size := utf8.DecodeRuneInString(s)
		return size
	}

	cut := runeCut
	if lt := strings.LastIndexByte(s[:cut], '<'); lt >= 0 && !strings.Contains(s[lt:cut], ">") {
		cut = lt
	}
	if amp := strings.LastIndexByte(s[:cut], '&'); amp >= 0 && !strings.Contains(s[amp:cut], ";") {
		cut = amp
	}
	if open := firstUnclosedTag(s[:cut]); open >= 0 {
		cut = open
	}
	if cut == 0 {
		return runeCut
	}
	return cut
}

// firstUnclosedTag returns the offset of the earliest opening tag in s whose
// closing tag is missing, or -1.
func firstUnclosedTag(s string) int {
	type tag struct {
		name string
		pos  int
	}
	var stack []tag
	for i := 0; i < len(s); {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			break
		}
		lt += i
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			break
		}
		gt += lt
		body := s[lt+1 : gt]
		if strings.HasPrefix(body, "/") {
			name := strings.TrimPrefix(body, "/")
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].name == name {
					stack = stack[:j]
					break
				}
			}
		} else if name, _, _ := strings.Cut(body, " "); name != "" {
			stack = append(stack, tag{name: name, pos: lt})
		}
		i = gt + 1
	}
	if len(stack) == 0 {
		return -1
	}
	return stack[0].pos
}
