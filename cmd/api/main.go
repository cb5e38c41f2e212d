package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/mahfuzr/krishi-assistant/internal/adapters/http"
	"github.com/mahfuzr/krishi-assistant/internal/bootstrap"
	"github.com/mahfuzr/krishi-assistant/internal/config"
	"github.com/mahfuzr/krishi-assistant/internal/observability/logging"
	"github.com/mahfuzr/krishi-assistant/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Close(closeCtx)
	}()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	checks := []httpadapter.ReadinessCheck{
		{Name: "postgres", Probe: app.Vector.Ping},
		{Name: "neo4j", Probe: app.Graph.Ping},
	}

	router := httpadapter.NewRouter(
		app.AskUC,
		app.IngestUC,
		app.Repo,
		serverMetrics,
		checks,
		cfg.RateLimitRPS,
		cfg.RateLimitBurst,
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
