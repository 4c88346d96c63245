// Package telegram is the chat transport: it turns Telegram updates into
// tracker calls and renders the replies.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/service"
)

const (
	pollTimeoutSeconds = 60
	downloadTimeout    = 30 * time.Second
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Tracker is the set of use cases the bot exposes.
type Tracker interface {
	RegisterUser(ctx context.Context, user domain.User) error
	RecordText(ctx context.Context, ownerID int64, text string) (service.Outcome, error)
	RecordImage(ctx context.Context, ownerID int64, data []byte, mimeType string) (service.Outcome, error)
	Recent(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error)
	MonthlyReportWithInsights(ctx context.Context, scope domain.Scope) (*service.MonthlyView, error)
	Total(ctx context.Context, scope domain.Scope) (float64, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// Bot handles Telegram updates for the expense tracker.
type Bot struct {
	api     API
	tracker Tracker
	http    *http.Client
	now     func() time.Time
}

// NewBot connects to the Bot API with token.
func NewBot(token string, tracker Tracker) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("NewBot: connecting to telegram: %w", err)
	}
	return NewBotWithAPI(api, tracker), nil
}

// NewBotWithAPI builds a bot on an existing API client.
func NewBotWithAPI(api API, tracker Tracker) *Bot {
	return &Bot{
		api:     api,
		tracker: tracker,
		http:    &http.Client{Timeout: downloadTimeout},
		now:     time.Now,
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	log.Info().Msg("Telegram bot polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info().Msg("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleWebhook processes one JSON-encoded update.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("HandleWebhook: decoding update: %w", err)
	}
	b.HandleUpdate(ctx, update)
	return nil
}

// HandleUpdate dispatches one update. Failures are reported to the chat and
// logged; they never stop the bot.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := logger.FromContext(ctx).With().Int("update_id", update.UpdateID).Logger()
	ctx = logger.WithContext(ctx, log)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil || update.Message.Chat == nil:
		return
	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message.Command(), update.Message.From, update.Message.Chat.ID)
	case len(update.Message.Photo) > 0:
		b.handlePhoto(ctx, update.Message)
	case update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

// Notify sends a Markdown message to a chat. Used by the monthly digest.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("Notify: %w", err)
	}
	return nil
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := b.api.Send(c)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("sending telegram message failed")
	}
	return msg, err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, _ = b.send(ctx, msg)
}

func (b *Bot) replyPlain(ctx context.Context, chatID int64, text string) {
	_, _ = b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// edit replaces the text of a previously sent message, falling back to a new
// message when the original could not be sent.
func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			msg.ReplyMarkup = *markup
		}
		_, _ = b.send(ctx, msg)
		return
	}

	cfg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	cfg.ParseMode = tgbotapi.ModeMarkdown
	cfg.ReplyMarkup = markup
	_, _ = b.send(ctx, cfg)
}
