package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "pledge-escrow/internal/adapter/http"
	"pledge-escrow/internal/config"
	"pledge-escrow/internal/db"
)

// main is the entry point of escrowd. It loads configuration, builds the
// logger and dispatches to a subcommand; serve is the default.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := cfg.Log.NewLogger(os.Stdout).With(slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = newRootCmd(cfg, logger).ExecuteContext(ctx); err != nil {
		logger.Error("escrowd failed", slog.Any("error", err))
		cancel()
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the escrow HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg, logger)
		},
	}
	root := &cobra.Command{
		Use:           "escrowd",
		Short:         "Crowdfunding escrow service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(*cobra.Command, []string) error {
			return migrate(cfg, logger)
		},
	}, &cobra.Command{
		Use:   "seed",
		Short: "Create demo campaigns in the configured store and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()
			return seed(cmd.Context(), a)
		},
	})
	return root
}

func seed(ctx context.Context, a *app) error {
	ids, err := db.Seed(ctx, a.svc, time.Now())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	a.logger.Info("demo campaigns seeded", slog.Any("ids", ids))
	return nil
}

// runServe starts the HTTP server and blocks until ctx is canceled, then
// shuts the server down gracefully.
func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.SeedDemo {
		if err = seed(ctx, a); err != nil {
			return err
		}
	}

	handler := httpadapter.NewHandler(a.svc, logger, a.metrics, a.registry)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}
