package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/app"
	"github.com/temcen/estaterec/internal/config"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("estaterec stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	logger := application.Logger()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           application.Router(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.StartConsumers()

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Estate recommendation API listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Listener failures take the same shutdown path as signals.
	var listenErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case listenErr = <-serveErr:
		logger.WithError(listenErr).Error("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Drain in-flight requests before the stores they use are closed.
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not drain before the deadline")
	}

	if err := application.Shutdown(shutdownCtx); err != nil {
		return errors.Join(listenErr, fmt.Errorf("shutdown: %w", err))
	}

	logger.Info("Estate recommendation API stopped")
	return listenErr
}
