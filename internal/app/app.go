// Package app assembles the service from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"weekly-tourney/internal/config"
	"weekly-tourney/internal/notify"
	"weekly-tourney/internal/registration"
	"weekly-tourney/internal/scheduler"
	"weekly-tourney/internal/sheets"
	"weekly-tourney/internal/store"
	"weekly-tourney/internal/upload"
	"weekly-tourney/internal/verify"
	"weekly-tourney/internal/week"
)

type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Store   store.Store
	Weeks   *week.Manager
	Service *registration.Service
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	a, err := assemble(ctx, cfg, loc, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

func assemble(ctx context.Context, cfg config.Config, loc *time.Location, st store.Store, logger *zap.Logger) (*App, error) {
	verifier, err := verify.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("verifier: %w", err)
	}
	uploader, err := upload.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("uploader: %w", err)
	}
	notifier, err := notify.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	var mirror registration.Mirror
	if cfg.SheetsSpreadsheetID != "" {
		sh, err := sheets.New(ctx, cfg.GoogleCredentialsFile, cfg.SheetsSpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("sheets: %w", err)
		}
		mirror = sh
	}

	weeks := week.NewManager(st, loc, logger)
	svc := registration.NewService(registration.Deps{
		Store:    st,
		Weeks:    weeks,
		Verifier: verifier,
		Uploader: uploader,
		Notifier: notifier,
		Mirror:   mirror,
		Logger:   logger,
	})

	logger.Info("service assembled",
		zap.String("store", cfg.StoreDriver),
		zap.String("verifier", verifier.Name()),
		zap.String("uploader", cfg.Uploader),
		zap.String("mailer", cfg.Mailer),
		zap.Bool("sheets_mirror", mirror != nil),
		zap.String("timezone", loc.String()))

	return &App{Config: cfg, Logger: logger, Store: st, Weeks: weeks, Service: svc}, nil
}

// Scheduler returns the rollover scheduler, or nil when ROLLOVER_CRON is unset.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	if a.Config.RolloverCron == "" {
		return nil, nil
	}
	return scheduler.New(a.Config.RolloverCron, a.Weeks.Location(), a.Rollover, a.Logger)
}

// Rollover resolves the current week, archiving the previous one if due.
func (a *App) Rollover(ctx context.Context) error {
	state, _, err := a.Weeks.Resolve(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("week resolved",
		zap.String("week_start", a.Weeks.FormatDate(state.RegistrationWeekStart)),
		zap.Int("teams", state.RegisteredTeamsCount))
	return nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
