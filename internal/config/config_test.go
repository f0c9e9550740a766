package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VERIFIER", "stub")
	t.Setenv("UPLOADER", "none")
	t.Setenv("MAILER", "log")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
}

func TestFromEnvDefaults(t *testing.T) {
	setMinimalEnv(t)

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "file", c.StoreDriver)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.RolloverCron)
}

func TestFromEnvTrimsValues(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ADMIN_EMAIL", "  admin@example.com ")
	t.Setenv("TIMEZONE", " UTC ")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", c.AdminEmail)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidateRequiresAdapterSettings(t *testing.T) {
	base := Config{
		StoreDriver: "file", DataDir: "data", Verifier: "stub",
		Uploader: "none", Mailer: "log", AdminEmail: "admin@example.com",
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"postgres without url":  func(c *Config) { c.StoreDriver = "postgres" },
		"unknown store":         func(c *Config) { c.StoreDriver = "redis" },
		"gemini without key":    func(c *Config) { c.Verifier = "gemini" },
		"gcs without bucket":    func(c *Config) { c.Uploader = "gcs" },
		"resend without key":    func(c *Config) { c.Mailer = "resend" },
		"no admin email":        func(c *Config) { c.AdminEmail = "" },
		"telegram without chat": func(c *Config) { c.TelegramToken = "123:abc" },
		"sheets without creds":  func(c *Config) { c.SheetsSpreadsheetID = "sheet" },
		"bad timezone":          func(c *Config) { c.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
