package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dvloznov/expense-tracker/internal/api/middleware"
	"github.com/dvloznov/expense-tracker/internal/logger"
)

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// UpdateHandler consumes raw Telegram update payloads.
type UpdateHandler interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

// WebhookHandler handles POST /webhook
type WebhookHandler struct {
	bot UpdateHandler
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(bot UpdateHandler) *WebhookHandler {
	return &WebhookHandler{bot: bot}
}

// Receive decodes one update and hands it to the bot. Telegram retries
// anything but a 2xx, so malformed updates are acknowledged and dropped.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.bot.HandleWebhook(ctx, body); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Dropping webhook update")
	}
	w.WriteHeader(http.StatusOK)
}
