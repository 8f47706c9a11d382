package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/phonedex/phonedex/internal/bot"
	"github.com/phonedex/phonedex/internal/config"
	"github.com/phonedex/phonedex/internal/contacts"
	"github.com/phonedex/phonedex/internal/db"
	"github.com/phonedex/phonedex/internal/handlers"
	"github.com/phonedex/phonedex/internal/logger"
	"github.com/phonedex/phonedex/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runApp()
			return nil
		},
	}
}

// telegramRuntime holds the resolved update-delivery settings. A webhook
// secret is generated at startup when the config leaves it empty.
type telegramRuntime struct {
	Mode   string
	Secret string
}

func runApp() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideTelegramRuntime,
			provideDBPool,
			fx.Annotate(contacts.NewService, fx.As(new(contacts.Store))),
			bot.NewService,

			provideServerHandler(handlers.NewContactsHandler),
			provideServerHandler(provideHealthHandler),
			provideServerHandler(provideWebhookHandler),

			provideServer,
		),
		fx.Invoke(
			startBot,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideTelegramRuntime(cfg config.Config) telegramRuntime {
	secret := strings.TrimSpace(cfg.Telegram.WebhookSecret)
	if secret == "" {
		secret = uuid.NewString()
	}
	return telegramRuntime{
		Mode:   cfg.Telegram.Mode,
		Secret: secret,
	}
}

func provideDBPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func provideHealthHandler() *handlers.HealthHandler {
	return handlers.NewHealthHandler()
}

func provideWebhookHandler(log *slog.Logger, botService *bot.Service, runtime telegramRuntime) *handlers.WebhookHandler {
	enabled := runtime.Mode == config.ModeWebhook && botService != nil
	return handlers.NewWebhookHandler(log, botService, runtime.Secret, enabled)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startBot(lc fx.Lifecycle, log *slog.Logger, botService *bot.Service, cfg config.Config, runtime telegramRuntime) {
	if botService == nil {
		return
	}
	botCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if runtime.Mode == config.ModeWebhook {
				base := strings.TrimRight(strings.TrimSpace(cfg.Web.PublicURL), "/")
				if base == "" {
					return fmt.Errorf("webhook mode requires web.public_url")
				}
				return botService.RegisterWebhook(base + "/telegram/webhook/" + runtime.Secret)
			}
			botService.StartPolling(botCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
