// Package telegram connects the conversation controller to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ledgerbot/internal/log"
	"ledgerbot/internal/middleware/ratelimit"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const msgRateLimited = "יותר מדי הודעות, נסה שוב בעוד רגע."

// API is the subset of *tgbotapi.BotAPI the loop uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Handler produces replies; *bot.Controller implements it.
type Handler interface {
	Start() string
	Help() string
	Prices() string
	HandleText(ctx context.Context, sender, text string) string
	HandleSummary(ctx context.Context, sender, arg string, allUsers bool) string
}

type Bot struct {
	api         API
	handler     Handler
	limiter     *ratelimit.Limiter
	logger      *log.Logger
	pollTimeout int
}

type Option func(*Bot)

// WithRateLimit caps each sender at limit messages per window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(b *Bot) {
		b.limiter = ratelimit.NewLimiter(ratelimit.Config{Limit: limit, Window: window})
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// NewAPI authenticates with the bot token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return api, nil
}

func New(api API, handler Handler, opts ...Option) *Bot {
	b := &Bot{api: api, handler: handler, pollTimeout: 60}
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = log.Default()
	}
	b.logger = b.logger.WithComponent(log.ComponentTelegram)
	return b
}

// Run long-polls for updates until ctx is cancelled. Messages are handled
// one at a time in arrival order.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer func() {
		b.api.StopReceivingUpdates()
		if b.limiter != nil {
			b.limiter.Stop()
		}
	}()

	b.logger.InfoContext(ctx, "Polling for updates", log.FieldOperation, log.OpStartup)
	for {
		select {
		case <-ctx.Done():
			args := []any{log.FieldOperation, log.OpShutdown}
			if b.limiter != nil {
				args = append(args, "rate_limited", b.limiter.GetMetrics().TotalHits)
			}
			b.logger.InfoContext(ctx, "Stopping update loop", args...)
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate answers a single update. Updates without a text message are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	reply := b.replyFor(ctx, msg)
	if reply == "" {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.logger.ErrorContext(ctx, "Failed to send reply",
			log.FieldChatID, msg.Chat.ID,
			log.FieldError, err)
	}
}

func (b *Bot) replyFor(ctx context.Context, msg *tgbotapi.Message) string {
	sender := SenderName(msg.From)
	if b.limiter != nil && msg.From != nil {
		if !b.limiter.Allow(strconv.FormatInt(msg.From.ID, 10)) {
			b.logger.WarnContext(ctx, "Sender rate limited", log.FieldUser, sender)
			return msgRateLimited
		}
	}

	if !msg.IsCommand() {
		return b.handler.HandleText(ctx, sender, msg.Text)
	}
	arg := msg.CommandArguments()
	switch strings.ToLower(msg.Command()) {
	case "start":
		return b.handler.Start()
	case "prices":
		return b.handler.Prices()
	case "summary":
		return b.handler.HandleSummary(ctx, sender, arg, false)
	case "report":
		return b.handler.HandleSummary(ctx, sender, arg, true)
	default:
		return b.handler.Help()
	}
}

// SenderName identifies who sent a message: @username when set, otherwise
// the full name, otherwise the numeric user ID.
func SenderName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return strconv.FormatInt(u.ID, 10)
}
