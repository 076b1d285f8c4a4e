package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"shortr/internal/api"
	"shortr/internal/api/handlers"
	"shortr/internal/api/middleware"
	"shortr/internal/app"
	"shortr/internal/pkg/logger"
	"shortr/internal/platform/config"
	"shortr/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise application")
	}

	limiter := middleware.NewRateLimiter(map[string]int{
		middleware.LimitRedirect: cfg.RateLimit.RedirectPerMinute,
		middleware.LimitAPIWrite: cfg.RateLimit.APIWritePerMinute,
	})
	defer limiter.Close()

	deps := &api.Dependencies{
		LinkHandler:      handlers.NewLinkHandler(a.Links, a.Recorder),
		AnalyticsHandler: handlers.NewAnalyticsHandler(a.Analytics),
		RedirectHandler:  handlers.NewRedirectHandler(a.Redirects),
		HealthHandler:    handlers.NewHealthHandler(a.DB, a.Cache()),
		MetricsHandler:   handlers.NewMetricsHandler(nil),
		AuthMiddleware:   middleware.NewAuthMiddleware(a.Tokens),
		RateLimiter:      limiter,
	}
	router := api.NewRouter(deps)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go workers.RunStoreGauges(workerCtx, a.Analytics, cfg.Analytics.RefreshInterval)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middleware.AccessLog(log.Logger, router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Bool("auth", a.Tokens.Enabled()).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if err := a.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close application")
	}
}
