// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath = "config.toml"
	DefaultHTTPAddr   = ":8080"
	DefaultPGHost     = "127.0.0.1"
	DefaultPGPort     = 5432
	DefaultPGUser     = "postgres"
	DefaultPGDatabase = "phonedex"
	DefaultPGSSLMode  = "disable"
	DefaultListLimit  = 50
)

// Delivery modes for inbound Telegram updates.
const (
	ModePoll    = "poll"
	ModeWebhook = "webhook"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Telegram TelegramConfig `toml:"telegram"`
	Web      WebConfig      `toml:"web"`
	Postgres PostgresConfig `toml:"postgres"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// TelegramConfig holds the bot token and update delivery mode.
// Mode is "poll" (long polling) or "webhook"; in webhook mode updates are
// received on /telegram/webhook/:secret of the HTTP server. When
// WebhookSecret is empty a random one is generated at startup.
type TelegramConfig struct {
	Token         string `toml:"token"`
	Mode          string `toml:"mode"`
	WebhookSecret string `toml:"webhook_secret"`
}

// WebConfig holds the public base URL advertised to chat users.
type WebConfig struct {
	PublicURL string `toml:"public_url"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields. A missing file is not an error; defaults plus
// environment overrides are returned.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Telegram: TelegramConfig{
			Mode: ModePoll,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)

	cfg.Telegram.Mode = strings.ToLower(strings.TrimSpace(cfg.Telegram.Mode))
	if cfg.Telegram.Mode == "" {
		cfg.Telegram.Mode = ModePoll
	}
	return cfg, nil
}

// applyEnv overrides secrets from the environment so they can stay out of
// the config file.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("PG_PASSWORD")); v != "" {
		cfg.Postgres.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("PUBLIC_URL")); v != "" {
		cfg.Web.PublicURL = v
	}
}
