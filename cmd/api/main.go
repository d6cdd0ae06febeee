package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procedure-backend/internal/bootstrap"
	"procedure-backend/internal/shared/config"
	"procedure-backend/internal/shared/server"
	"procedure-backend/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("api.bootstrap.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("api.start", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("api.server.failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	case <-ctx.Done():
		telemetry.Info("api.shutdown", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			telemetry.Error("api.shutdown.failed", map[string]any{"error": err.Error()})
		}
	}
}
