package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"pledge-escrow/internal/adapter/memory"
	"pledge-escrow/internal/adapter/notify"
	"pledge-escrow/internal/adapter/postgres"
	"pledge-escrow/internal/adapter/usecase"
	"pledge-escrow/internal/config"
	"pledge-escrow/internal/config/configs"
	"pledge-escrow/internal/core/port"
	"pledge-escrow/internal/db"
	"pledge-escrow/internal/metrics"
)

// app holds the wired escrow service and what must be released on exit.
type app struct {
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	bus      *notify.Bus
	svc      *usecase.EscrowUseCase
	closers  []func()
}

// newApp builds the store, transferer, event sinks and use case selected
// by cfg. The caller must call close.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (a *app, err error) {
	a = &app{logger: logger, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	var (
		store      port.Store
		transferer port.Transferer
	)
	switch cfg.Store.Driver {
	case configs.DriverPostgres:
		if cfg.Psql.RunMigrations {
			if err = migrate(cfg, logger); err != nil {
				return a, err
			}
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return a, fmt.Errorf("database connection: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		store = postgres.NewStore(pool, cfg.Psql.TxRetries)
		// Transfers are journaled in the operation's transaction, so a
		// serialization retry never repeats an external side effect.
		transferer = postgres.NewTransferJournal()
	default:
		store = memory.NewStore()
		transferer = memory.NewVault()
	}
	logger.Info("store ready", slog.String("driver", cfg.Store.Driver))

	a.bus = notify.NewBus(logger)
	a.closers = append(a.closers, a.bus.Close)
	if err = a.bus.Subscribe(notify.NewMetricsSink(a.metrics), false); err != nil {
		return a, err
	}
	if err = a.bus.Subscribe(notify.NewLogSink(logger), false); err != nil {
		return a, err
	}
	if cfg.Redis.Enabled() {
		client, err := notify.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return a, err
		}
		// Registered before the bus closer runs, so the client closes
		// after async deliveries drain.
		a.closers = append([]func(){func() { _ = client.Close() }}, a.closers...)
		if err = a.bus.Subscribe(notify.NewRedisSink(client, cfg.Redis, logger), true); err != nil {
			return a, err
		}
		logger.Info("streaming events to redis", slog.String("stream", cfg.Redis.Stream))
	}

	guard := usecase.NewFundTransferGuard(transferer, logger, a.metrics)
	a.svc = usecase.NewEscrowUseCase(store, guard, a.bus, a.metrics)
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func migrate(cfg config.Config, logger *slog.Logger) error {
	before, err := db.Migrate(cfg.Psql.Addr.String())
	if err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	logger.Info("migrations applied successfully", slog.Uint64("from_version", uint64(before)))
	return nil
}
