package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weekly-tourney/internal/app"
	"weekly-tourney/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := a.Scheduler()
		if err != nil {
			return err
		}
		if sched != nil {
			sched.Start()
		}

		if !cfg.LogDevelopment {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.New(a.Service, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if sched != nil {
			sched.Stop(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("bye")
		return nil
	},
}

var winnersCmd = &cobra.Command{
	Use:   "winners",
	Short: "Email and record this week's winners",
	RunE: func(cmd *cobra.Command, args []string) error {
		first, _ := cmd.Flags().GetString("first")
		second, _ := cmd.Flags().GetString("second")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			record, err := a.Service.ProcessAndEmailWinners(ctx, first, second)
			if err != nil {
				return err
			}
			return printJSON(cmd, record)
		})
	},
}

var archivesCmd = &cobra.Command{
	Use:   "archives [date]",
	Short: "List archived weeks, or print one archived roster",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if len(args) == 1 {
				data, err := a.Service.Archive(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, data)
			}
			out, err := a.Service.Archives(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		})
	},
}

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Resolve the current week now, archiving the previous one if due",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Rollover(ctx)
		})
	},
}

func init() {
	winnersCmd.Flags().String("first", "", "first place team name")
	winnersCmd.Flags().String("second", "", "second place team name")
	_ = winnersCmd.MarkFlagRequired("first")
	_ = winnersCmd.MarkFlagRequired("second")
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
