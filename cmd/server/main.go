package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/config"
	"github.com/Simplici0/devis/internal/db"
	"github.com/Simplici0/devis/internal/events"
	"github.com/Simplici0/devis/internal/migrations"
	"github.com/Simplici0/devis/internal/quote"
	"github.com/Simplici0/devis/internal/seed"
	"github.com/Simplici0/devis/internal/store"
	"github.com/Simplici0/devis/internal/transport"
	"github.com/Simplici0/devis/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.IsDev()})
	if err != nil {
		log = logger.Default()
		log.Warnw("failed to build logger, using default", "error", err)
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings {
		log.Warnw("config", "warning", w)
	}

	if err := run(cfg, log); err != nil {
		log.Errorw("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return err
	}
	if version, err := migrations.Version(database); err == nil {
		log.Infow("database ready", "path", cfg.DBPath, "schema_version", version)
	}

	if cfg.SeedDemo {
		stats, err := seed.Run(ctx, database)
		if err != nil {
			return err
		}
		log.Infow("demo seed applied", "inserts", stats.Inserts)
	}

	tariffs, err := transport.LoadTable(cfg.TariffsPath)
	if err != nil {
		return err
	}
	log.Infow("tariff table loaded", "tariffs", tariffs.Len(), "source", tariffSource(cfg.TariffsPath))

	bus := events.NewBus()
	eventLog := log.WithComponent("events")
	bus.Subscribe("", func(e events.Event) {
		eventLog.Debugw("event published", "aggregate", e.AggregateType, "id", e.AggregateID, "type", e.Type)
	})

	catalogSvc := catalog.NewService(store.NewClientRepo(database), store.NewProductRepo(database), bus)
	quoteSvc := quote.NewService(store.NewQuoteRepo(database), tariffs, catalogSvc, bus, log,
		quote.WithDefaultTargetMargin(cfg.DefaultTargetMargin))

	srv := &server{
		quotes:  quoteSvc,
		catalog: catalogSvc,
		tariffs: tariffs,
		log:     log.WithComponent("http"),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func tariffSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
