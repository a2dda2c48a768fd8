package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the host environment and from any .env or
// token file in the package directory.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TOKEN", "TOKEN_FILE", "DATABASE_URL", "GUILD_ID", "WHITELISTED_USERS",
		"LOG_WEBHOOK_URL", "RESET_SCHEDULE", "METRICS_ADDR", "DEFAULT_LOCALE", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN", "  secret  ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "sqlite://rp_database.db", cfg.DatabaseURL)
	assert.Equal(t, "0 0 * * 1", cfg.ResetSchedule)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.WhitelistedUsers)
}

func TestLoadFull(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rpbot?sslmode=disable")
	t.Setenv("GUILD_ID", "123456789012345678")
	t.Setenv("WHITELISTED_USERS", " 111 , 222,,333 ")
	t.Setenv("LOG_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
	t.Setenv("RESET_SCHEDULE", "30 12 * * 0")
	t.Setenv("DEFAULT_LOCALE", "fr")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333"}, cfg.WhitelistedUsers)
	assert.Equal(t, "30 12 * * 0", cfg.ResetSchedule)
	assert.Equal(t, "fr", cfg.DefaultLocale)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadTokenFile(t *testing.T) {
	t.Run("default file", func(t *testing.T) {
		clearEnv(t)
		require.NoError(t, os.WriteFile("token", []byte("from-file\n"), 0o600))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Token)
	})

	t.Run("explicit file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "bot-token")
		require.NoError(t, os.WriteFile(path, []byte("explicit"), 0o600))
		t.Setenv("TOKEN_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.Token)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TOKEN_FILE", filepath.Join(t.TempDir(), "nope"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("no token at all", func(t *testing.T) {
		clearEnv(t)
		_, err := Load()
		assert.ErrorContains(t, err, "TOKEN")
	})
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]map[string]string{
		"guild id":       {"GUILD_ID": "my-server"},
		"whitelist":      {"WHITELISTED_USERS": "111,bob"},
		"database url":   {"DATABASE_URL": "mysql://localhost/rp"},
		"webhook scheme": {"LOG_WEBHOOK_URL": "http://discord.com/api/webhooks/1/abc"},
		"schedule":       {"RESET_SCHEDULE": "every monday"},
		"log level":      {"LOG_LEVEL": "loud"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TOKEN", "secret")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
