package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"storysync/internal/app/server/api"
	"storysync/internal/app/server/config"
	"storysync/internal/domain/entity"
	"storysync/internal/infrastructure/metrics"
	"storysync/internal/infrastructure/migration"
	"storysync/internal/infrastructure/storage/sqlstore"
	"storysync/internal/utils/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env,
		logger.WithLevel(conf.Logger.LogLevel),
		logger.WithFile(conf.Logger.File),
	)

	if err := run(conf, log); err != nil {
		log.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(conf *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migration.NewMigration(conf.DB.Driver, conf.DB.DatabaseURI, nil).Up(); err != nil {
		return err
	}
	log.Info("migrations applied", slog.String("driver", conf.DB.Driver))

	store, err := sqlstore.Open(ctx, conf.DB.Driver, conf.DB.DatabaseURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("close store", slog.String("error", err.Error()))
		}
	}()

	router := api.New(api.Deps{
		Store:    store,
		Registry: entity.Storymaster(),
		Config:   conf,
		Metrics:  metrics.New(),
	}, log)

	server := &http.Server{
		Addr:              conf.Server.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("sync server started",
			slog.String("env", conf.Env),
			slog.String("addr", conf.Server.RunAddress),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
