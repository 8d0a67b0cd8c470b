package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"projecthub/internal/backend"
	"projecthub/internal/cache"
	"projecthub/internal/cli"
	apphttp "projecthub/internal/http"
	"projecthub/internal/log"
	"projecthub/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	b, err := backend.NewFactory(logger).Create(context.Background(), cfg.Backend())
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Reference lists used by the dialogs, swept by the cache manager.
	refs := backend.NewReferences(b, cfg.ReferenceCacheSize, cfg.ReferenceCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	refs.Register(cacheManager)
	cacheManager.StartCleanup(cfg.ReferenceCacheTTL)

	journal := cli.OpenJournal(logger, cfg.JournalDBPath)

	var publisher services.Publisher
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		publisher = amqpClient
	}
	submissions := services.NewSubmissionService(b, journal, publisher, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Backend:    b,
		References: refs,
		Submitter:  submissions,
		Activity:   journal,
	}, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := journal.Close(); err != nil {
			logger.Warn("Journal close error", log.FieldError, err)
		}
	})

	logger.Info("Starting projecthub server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
