package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/locale"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
	"github.com/dvloznov/expense-tracker/internal/report"
	"github.com/dvloznov/expense-tracker/internal/service"
)

const maxPhotoBytes = 20 << 20

func (b *Bot) handleCommand(ctx context.Context, cmd string, from *tgbotapi.User, chatID int64) {
	log := logger.FromContext(ctx).With().Str("command", cmd).Int64("telegram_id", from.ID).Logger()
	ctx = logger.WithContext(ctx, log)

	switch cmd {
	case "start":
		b.handleStart(ctx, from, chatID)
	case "help":
		b.reply(ctx, chatID, helpMessage)
	case "report":
		b.handleReport(ctx, from.ID, chatID)
	case "expenses":
		b.handleExpenses(ctx, from.ID, chatID)
	case "total":
		b.handleTotal(ctx, from.ID, chatID)
	case "categories":
		b.handleCategories(ctx, chatID)
	default:
		log.Debug().Msg("ignoring unknown command")
	}
}

func (b *Bot) handleStart(ctx context.Context, from *tgbotapi.User, chatID int64) {
	user := domain.User{TelegramID: from.ID, Username: from.UserName, FirstName: from.FirstName}
	if err := b.tracker.RegisterUser(ctx, user); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("registering user failed")
	}
	b.reply(ctx, chatID, welcomeMessage)
}

func (b *Bot) handleReport(ctx context.Context, ownerID, chatID int64) {
	scope := domain.NewScope(ownerID, b.now())

	view, err := b.tracker.MonthlyReportWithInsights(ctx, scope)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("building report failed")
		b.replyPlain(ctx, chatID, "❌ Error generating report. Please try again.")
		return
	}
	if view.Report.Count == 0 {
		b.replyPlain(ctx, chatID, report.NoExpensesMessage)
		return
	}

	msg := tgbotapi.NewMessage(chatID, report.FormatMonthlyReport(view.Report, escape(view.Insights)))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = reportKeyboard()
	_, _ = b.send(ctx, msg)

	if len(view.Chart) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "report.png", Bytes: view.Chart})
		photo.Caption = report.MonthLabel(scope)
		_, _ = b.send(ctx, photo)
	}
}

func (b *Bot) handleExpenses(ctx context.Context, ownerID, chatID int64) {
	records, err := b.tracker.Recent(ctx, ownerID, service.DefaultRecentLimit)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("loading recent expenses failed")
		b.replyPlain(ctx, chatID, "❌ Error fetching expenses. Please try again.")
		return
	}
	b.reply(ctx, chatID, report.FormatRecent(escapeRecords(records)))
}

func (b *Bot) handleTotal(ctx context.Context, ownerID, chatID int64) {
	scope := domain.NewScope(ownerID, b.now())

	total, err := b.tracker.Total(ctx, scope)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("loading total failed")
		b.replyPlain(ctx, chatID, "❌ Error fetching total. Please try again.")
		return
	}
	b.reply(ctx, chatID, report.FormatTotal(scope, total))
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) {
	categories, err := b.tracker.Categories(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("loading categories failed")
		b.replyPlain(ctx, chatID, "❌ Error fetching categories. Please try again.")
		return
	}
	b.reply(ctx, chatID, report.FormatCategories(categories))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("answering callback failed")
	}
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}

	switch cb.Data {
	case callbackReport, callbackExpenses, callbackTotal:
		b.handleCommand(ctx, cb.Data, cb.From, cb.Message.Chat.ID)
	default:
		log := logger.FromContext(ctx)
		log.Debug().Str("data", cb.Data).Msg("ignoring unknown callback")
	}
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	ownerID := message.From.ID
	log := logger.FromContext(ctx).With().Int64("telegram_id", ownerID).Logger()
	ctx = logger.WithContext(ctx, log)

	processing, _ := b.send(ctx, tgbotapi.NewMessage(chatID, processingTextMessage))

	outcome, err := b.tracker.RecordText(ctx, ownerID, message.Text)
	switch {
	case errors.Is(err, pipeline.ErrExtractionUnavailable):
		log.Error().Err(err).Msg("text extraction unavailable")
		b.edit(ctx, chatID, processing.MessageID, unavailableTextMessage, nil)
		return
	case err != nil:
		log.Error().Err(err).Msg("recording text expense failed")
		b.edit(ctx, chatID, processing.MessageID, genericErrorMessage, nil)
		return
	case outcome.NeedsClarification:
		b.edit(ctx, chatID, processing.MessageID, noAmountMessage, nil)
		return
	}

	keyboard := confirmationKeyboard(true)
	b.edit(ctx, chatID, processing.MessageID, formatTextConfirmation(outcome.Record), &keyboard)
}

func (b *Bot) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	ownerID := message.From.ID
	log := logger.FromContext(ctx).With().Int64("telegram_id", ownerID).Logger()
	ctx = logger.WithContext(ctx, log)

	processing, _ := b.send(ctx, tgbotapi.NewMessage(chatID, processingImageMessage))

	// Telegram lists sizes smallest first.
	photo := message.Photo[len(message.Photo)-1]
	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.Error().Err(err).Str("file_id", photo.FileID).Msg("downloading photo failed")
		b.edit(ctx, chatID, processing.MessageID, unavailableImageMessage, nil)
		return
	}

	outcome, err := b.tracker.RecordImage(ctx, ownerID, data, "image/jpeg")
	switch {
	case errors.Is(err, pipeline.ErrExtractionUnavailable):
		log.Error().Err(err).Msg("image extraction unavailable")
		b.edit(ctx, chatID, processing.MessageID, unavailableImageMessage, nil)
		return
	case err != nil:
		log.Error().Err(err).Msg("recording image expense failed")
		b.edit(ctx, chatID, processing.MessageID, unavailableImageMessage, nil)
		return
	case outcome.NeedsClarification:
		b.edit(ctx, chatID, processing.MessageID, formatImageClarification(outcome.Draft), nil)
		return
	}

	keyboard := confirmationKeyboard(false)
	b.edit(ctx, chatID, processing.MessageID, formatImageConfirmation(outcome.Record), &keyboard)
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("downloadFile: resolving file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("downloadFile: building request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloadFile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloadFile: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("downloadFile: reading body: %w", err)
	}
	return data, nil
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func escapeRecords(records []domain.ExpenseRecord) []domain.ExpenseRecord {
	out := make([]domain.ExpenseRecord, len(records))
	for i, r := range records {
		r.Description = escape(r.Description)
		out[i] = r
	}
	return out
}

func formatTextConfirmation(rec *domain.ExpenseRecord) string {
	var sb strings.Builder
	sb.WriteString("✅ *Pengeluaran Berhasil Ditambahkan! / Expense Added Successfully!*\n\n")
	fmt.Fprintf(&sb, "💰 Jumlah / Amount: %s\n", locale.FormatRupiah(rec.Amount))
	fmt.Fprintf(&sb, "📝 Deskripsi / Description: %s\n", escape(rec.Description))
	if gloss := locale.TranslateToEnglish(rec.Description); gloss != strings.ToLower(rec.Description) {
		fmt.Fprintf(&sb, "🇺🇸 English: %s\n", escape(gloss))
	}
	fmt.Fprintf(&sb, "🏷️ Kategori / Category: %s\n", rec.Category)
	fmt.Fprintf(&sb, "📅 Tanggal / Date: %s", rec.Date.Format(pipeline.DateLayout))
	return sb.String()
}

func formatImageConfirmation(rec *domain.ExpenseRecord) string {
	merchant := "Tidak terdeteksi / Not detected"
	if rec.Merchant != nil && *rec.Merchant != "" {
		merchant = escape(*rec.Merchant)
	}
	raw := "None"
	if rec.RawText != "" {
		raw = escape(previewText(rec.RawText, rawTextPreviewLimit))
	}

	var sb strings.Builder
	sb.WriteString("✅ *Pengeluaran Berhasil Diekstrak dari Gambar! / Expense Extracted from Image!*\n\n")
	fmt.Fprintf(&sb, "💰 Jumlah / Amount: %s\n", locale.FormatRupiah(rec.Amount))
	fmt.Fprintf(&sb, "📝 Deskripsi / Description: %s\n", escape(rec.Description))
	fmt.Fprintf(&sb, "🏷️ Kategori / Category: %s\n", rec.Category)
	fmt.Fprintf(&sb, "🏪 Merchant: %s\n", merchant)
	fmt.Fprintf(&sb, "📅 Tanggal / Date: %s\n\n", rec.Date.Format(pipeline.DateLayout))
	fmt.Fprintf(&sb, "📋 Teks mentah / Raw text: %s", raw)
	return sb.String()
}

func formatImageClarification(draft domain.ExpenseDraft) string {
	raw := draft.RawText
	if strings.TrimSpace(raw) == "" {
		raw = "No text detected"
	}
	return "📸 Gambar diproses tetapi jumlah tidak ditemukan. / Image processed but no clear expense amount found.\n\n" +
		"📝 Extracted text: " + escape(raw) + "\n\n" +
		"Silakan kirim jumlahnya sebagai teks, misalnya \"Makan siang 25rb\". / Please send the amount as text, e.g. \"Lunch 25000\"."
}

func previewText(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
