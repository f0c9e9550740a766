package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"` // file|postgres|sqlite
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/registrations.db"`

	// Timezone is the IANA name the registration week is computed in.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	Verifier     string `env:"VERIFIER" envDefault:"gemini"` // gemini|stub
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	Uploader              string `env:"UPLOADER" envDefault:"gcs"` // gcs|none
	GCSBucket             string `env:"GCS_BUCKET"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`

	Mailer       string `env:"MAILER" envDefault:"resend"` // resend|log
	ResendAPIKey string `env:"RESEND_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Weekly Tourney <noreply@example.com>"`
	AdminEmail   string `env:"ADMIN_EMAIL"`

	TelegramToken       string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID"`

	SheetsSpreadsheetID string `env:"SHEETS_SPREADSHEET_ID"`

	// RolloverCron schedules an eager week rollover; empty keeps it lazy.
	RolloverCron string `env:"ROLLOVER_CRON"`
}

// FromEnv reads .env (when present) and the process environment.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	c.trim()
	return c, c.Validate()
}

func (c *Config) trim() {
	for _, p := range []*string{
		&c.HTTPAddr, &c.StoreDriver, &c.DataDir, &c.DatabaseURL, &c.SQLitePath, &c.Timezone,
		&c.Verifier, &c.GeminiAPIKey, &c.Uploader, &c.GCSBucket, &c.GoogleCredentialsFile,
		&c.Mailer, &c.ResendAPIKey, &c.MailFrom, &c.AdminEmail, &c.TelegramToken,
		&c.SheetsSpreadsheetID, &c.RolloverCron,
	} {
		*p = strings.TrimSpace(*p)
	}
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case "file":
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is empty")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is empty")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER: %s", c.StoreDriver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.Verifier {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini verifier")
		}
	case "stub":
	default:
		return fmt.Errorf("unknown VERIFIER: %s", c.Verifier)
	}

	switch c.Uploader {
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs uploader")
		}
	case "none":
	default:
		return fmt.Errorf("unknown UPLOADER: %s", c.Uploader)
	}

	switch c.Mailer {
	case "resend":
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for the resend mailer")
		}
	case "log":
	default:
		return fmt.Errorf("unknown MAILER: %s", c.Mailer)
	}
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is empty")
	}

	if c.TelegramToken != "" && c.TelegramAdminChatID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	if c.SheetsSpreadsheetID != "" && c.GoogleCredentialsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE is required when SHEETS_SPREADSHEET_ID is set")
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the process time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}
