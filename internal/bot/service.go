// Package bot runs the Telegram side: inbound update handling, chat
// commands, and phone extraction from free-text messages.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/phonedex/phonedex/internal/config"
	"github.com/phonedex/phonedex/internal/contacts"
)

// Telegram caps bots at roughly 30 messages per second overall.
const sendRatePerSecond = 30

// Service consumes Telegram updates and replies over the same connection.
type Service struct {
	logger    *slog.Logger
	api       *tgbotapi.BotAPI
	store     contacts.Store
	limiter   *rate.Limiter
	publicURL string
}

// NewService connects to the Telegram Bot API and builds the update handler.
// Without a token the bot is disabled and a nil service is returned, so the
// HTTP API can still serve the stored contacts.
func NewService(log *slog.Logger, cfg config.Config, store contacts.Store) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	token := strings.TrimSpace(cfg.Telegram.Token)
	if token == "" {
		log.Warn("telegram token not configured, running API only")
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Service{
		logger:    log.With(slog.String("service", "bot")),
		api:       api,
		store:     store,
		limiter:   rate.NewLimiter(rate.Limit(sendRatePerSecond), sendRatePerSecond),
		publicURL: strings.TrimRight(strings.TrimSpace(cfg.Web.PublicURL), "/"),
	}, nil
}

// StartPolling begins long polling for updates. Each update is processed in
// its own goroutine; the loop stops when ctx is cancelled.
func (s *Service) StartPolling(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := s.api.GetUpdatesChan(updateConfig)

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("stop polling")
				s.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					s.logger.Info("updates channel closed")
					return
				}
				go s.HandleUpdate(ctx, update)
			}
		}
	}()
	s.logger.Info("polling started", slog.String("bot", s.api.Self.UserName))
}

// RegisterWebhook tells Telegram to deliver updates to the given public URL.
func (s *Service) RegisterWebhook(webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := s.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	s.logger.Info("webhook registered")
	return nil
}

// HandleUpdate processes one inbound update and sends the reply, if any.
// A failure while handling one message never takes down the loop: the user
// gets a generic apology and the error is logged.
func (s *Service) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	chatID := msg.Chat.ID

	var reply string
	var err error
	if msg.IsCommand() {
		reply, err = s.handleCommand(ctx, msg.Command(), msg.CommandArguments())
	} else {
		reply, err = s.handleText(ctx, int64(msg.MessageID), chatID, msg.Text)
	}
	if err != nil {
		s.logger.Error("handle message failed",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", msg.MessageID),
			slog.Any("error", err),
		)
		reply = apologyReply
	}
	if reply == "" {
		return
	}
	s.send(ctx, chatID, reply)
}

// send delivers one text reply, rate limited. Transport failures are logged
// and swallowed.
func (s *Service) send(ctx context.Context, chatID int64, text string) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	message := tgbotapi.NewMessage(chatID, text)
	if _, err := s.api.Send(message); err != nil {
		s.logger.Error("send reply failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}
