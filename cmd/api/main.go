package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appanalysis "github.com/bryanwahyu/loglens/internal/application/analysis"
	"github.com/bryanwahyu/loglens/internal/config"
	"github.com/bryanwahyu/loglens/internal/infra/ai"
	"github.com/bryanwahyu/loglens/internal/infra/httpserver"
	"github.com/bryanwahyu/loglens/internal/logging"
	"github.com/bryanwahyu/loglens/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	_, logCloser := logging.Init(cfg.Log)
	defer logCloser.Close()

	if err := middleware.ValidateAPIKeys(cfg.Auth.APIKeys); err != nil {
		return err
	}

	ctx := context.Background()

	health := middleware.HealthOptions{Checkers: map[string]middleware.HealthChecker{}}

	gen, genCloser, err := ai.NewGenerator(ctx, cfg)
	defer genCloser.Close()
	if err != nil {
		if cfg.Server.RequireModel {
			return err
		}
		slog.Warn("model client not initialized, starting in degraded mode", "error", err)
		health.DegradedReason = err.Error()
	} else {
		slog.Info("model client initialized", "model", gen.Name())
	}

	opts := []appanalysis.Option{appanalysis.WithModelTimeout(cfg.Model.Timeout)}

	archive, err := openArchive(ctx, cfg.Archive, health.Checkers)
	if err != nil {
		return err
	}
	defer archive.Close()
	if len(archive.members) > 0 {
		opts = append(opts, appanalysis.WithArchive(archive.members))
	}

	svc := appanalysis.NewService(gen, opts...)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	defer limiter.Stop()

	handler := httpserver.NewRouter(svc, httpserver.Options{
		APIKeys:        cfg.Auth.APIKeys,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Health:         health,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	slog.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}
