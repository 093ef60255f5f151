package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"subboard/internal/backend"
	"subboard/internal/cache"
	"subboard/internal/cli"
	"subboard/internal/core"
	apphttp "subboard/internal/http"
	applog "subboard/internal/log"
	"subboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	cat := cli.LoadCatalog(logger, cfg.CatalogPath)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	reportCache := cache.NewLRUCache[core.ReportPayload](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.CacheTTL)

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.FavoriteEventPublisher
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		publisher = amqpClient
	}

	reports := services.NewReportService(result.Backend, cat, reportCache,
		services.WithReportLogger(logger))
	favorites := services.NewFavoritesService(result.Backend, cat, publisher, logger)
	directory := services.NewDirectoryService(cat, favorites, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reports:            reports,
		Directory:          directory,
		Favorites:          favorites,
		Ping:               result.Ping,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting subboard server",
		"port", cfg.Port,
		"backend", backendCfg.Type,
		"reports", cat.Len(),
		"events", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
