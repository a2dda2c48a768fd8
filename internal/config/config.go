package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	defaultDatabaseURL   = "sqlite://rp_database.db"
	defaultTokenFile     = "token"
	defaultResetSchedule = "0 0 * * 1"
	defaultLocale        = "en"
)

type Config struct {
	Token            string
	DatabaseURL      string
	GuildID          string
	WhitelistedUsers []string
	LogWebhookURL    string
	ResetSchedule    string
	MetricsAddr      string
	DefaultLocale    string
	LogLevel         zerolog.Level
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional when variables come from the environment (Docker, systemd, CI).
	}

	cfg := &Config{
		Token:            strings.TrimSpace(os.Getenv("TOKEN")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GuildID:          strings.TrimSpace(os.Getenv("GUILD_ID")),
		WhitelistedUsers: splitIDs(os.Getenv("WHITELISTED_USERS")),
		LogWebhookURL:    strings.TrimSpace(os.Getenv("LOG_WEBHOOK_URL")),
		ResetSchedule:    strings.TrimSpace(os.Getenv("RESET_SCHEDULE")),
		MetricsAddr:      strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		DefaultLocale:    strings.TrimSpace(os.Getenv("DEFAULT_LOCALE")),
		LogLevel:         zerolog.InfoLevel,
	}

	if cfg.Token == "" {
		token, err := readTokenFile(os.Getenv("TOKEN_FILE"))
		if err != nil {
			return nil, err
		}
		cfg.Token = token
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("config: LOG_LEVEL %q: %w", raw, err)
		}
		cfg.LogLevel = level
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readTokenFile reads the bot token from path, or from ./token when path is
// empty. A missing default file is not an error.
func readTokenFile(path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = defaultTokenFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: read TOKEN_FILE %s: %w", path, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validate applies the configuration rules and fills defaults.
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: TOKEN (or TOKEN_FILE) is required")
	}

	if c.GuildID != "" && !isSnowflake(c.GuildID) {
		return fmt.Errorf("config: GUILD_ID must be a Discord server ID (digits only)")
	}

	for _, id := range c.WhitelistedUsers {
		if !isSnowflake(id) {
			return fmt.Errorf("config: WHITELISTED_USERS contains %q, expected Discord user IDs (digits only)", id)
		}
	}

	if c.DatabaseURL == "" {
		c.DatabaseURL = defaultDatabaseURL
	}
	if !strings.HasPrefix(c.DatabaseURL, "sqlite://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("config: DATABASE_URL %q must start with sqlite://, postgres:// or postgresql://", c.DatabaseURL)
	}

	if c.LogWebhookURL != "" && !strings.HasPrefix(c.LogWebhookURL, "https://") {
		return fmt.Errorf("config: LOG_WEBHOOK_URL must be an https URL")
	}

	if c.ResetSchedule == "" {
		c.ResetSchedule = defaultResetSchedule
	}
	if _, err := cron.ParseStandard(c.ResetSchedule); err != nil {
		return fmt.Errorf("config: RESET_SCHEDULE %q: %w", c.ResetSchedule, err)
	}

	if c.DefaultLocale == "" {
		c.DefaultLocale = defaultLocale
	}

	return nil
}
