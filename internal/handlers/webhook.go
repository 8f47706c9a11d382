package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/phonedex/phonedex/internal/bot"
)

// WebhookHandler receives Telegram updates over HTTP when the bot runs in
// webhook mode. The route carries a shared secret so only Telegram's
// deliveries are accepted.
type WebhookHandler struct {
	bot     *bot.Service
	secret  string
	enabled bool
	logger  *slog.Logger
}

// NewWebhookHandler creates the webhook endpoint. When enabled is false the
// route is not registered (polling mode).
func NewWebhookHandler(log *slog.Logger, botService *bot.Service, secret string, enabled bool) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		bot:     botService,
		secret:  secret,
		enabled: enabled,
		logger:  log.With(slog.String("handler", "webhook")),
	}
}

// Register mounts POST /telegram/webhook/:secret on the Echo instance.
func (h *WebhookHandler) Register(e *echo.Echo) {
	if !h.enabled {
		return
	}
	e.POST("/telegram/webhook/:secret", h.Receive)
}

// Receive decodes one update and hands it to the bot. Replies are sent over
// the bot connection, so Telegram only needs a 200 here.
func (h *WebhookHandler) Receive(c echo.Context) error {
	if c.Param("secret") != h.secret {
		return c.NoContent(http.StatusNotFound)
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		h.logger.Error("decode update failed", slog.Any("error", err))
		return c.NoContent(http.StatusBadRequest)
	}
	go h.bot.HandleUpdate(context.Background(), update)
	return c.NoContent(http.StatusOK)
}
