package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grablet/internal/backend"
	"grablet/internal/cache"
	"grablet/internal/config"
	"grablet/internal/convo"
	"grablet/internal/handlers"
	"grablet/internal/httpserver"
	"grablet/internal/logging"
	"grablet/internal/metrics"
	"grablet/internal/repo"
	"grablet/internal/router"
	"grablet/internal/speech"
	"grablet/internal/wa"
	"grablet/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.AppEnv)
	logger.Info("starting grablet", "env", cfg.AppEnv)

	// The reply tables are static; an incomplete table is a programming
	// error and must stop the service before it answers anything.
	if err := router.ValidateTemplates(); err != nil {
		return fmt.Errorf("validate reply templates: %w", err)
	}

	if cfg.PublicBaseURL != "" {
		webhookURL := strings.TrimRight(cfg.PublicBaseURL, "/") + "/webhook/backend"
		logger.Info("public base url configured", "base_url", cfg.PublicBaseURL, "webhook_url", webhookURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	var store repo.Store
	if cfg.UsePostgres() {
		store, err = repo.NewPostgres(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
	} else {
		logger.Info("no postgres configured, using sqlite", "path", cfg.SQLitePath)
		store, err = repo.NewSQLite(ctx, cfg.SQLitePath, logger)
	}
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	redisClient := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	}, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed closing redis", "error", err)
		}
	}()
	if err := redisClient.Ping(ctx); err != nil {
		logger.Warn("redis ping failed", "error", err)
	}

	backendClient := backend.New(backend.Config{
		BaseURL:     cfg.BackendBaseURL,
		APIKey:      cfg.BackendAPIKey,
		Timeout:     cfg.BackendTimeout,
		SnapshotTTL: cfg.BackendSnapshotTTL,
	}, logger, metricRegistry, redisClient)

	speechService := speech.New(speech.Config{
		ElevenAPIKey:       cfg.ElevenAPIKey,
		ElevenMalayVoice:   cfg.ElevenMalayVoice,
		GoogleAPIKey:       cfg.GoogleTTSAPIKey,
		GoogleEnglishVoice: cfg.GoogleEnglishVoice,
		GoogleChineseVoice: cfg.GoogleChineseVoice,
		WhisperAPIKey:      cfg.WhisperAPIKey,
		Timeout:            cfg.SpeechTimeout,
	}, logger, metricRegistry)

	engine := convo.New(store, backendClient, metricRegistry, logger)

	var notifier handlers.Notifier
	if cfg.WhatsAppEnabled {
		waClient, err := wa.New(ctx, wa.Config{
			StorePath: cfg.WhatsAppStorePath,
			LogLevel:  cfg.WhatsAppLogLevel,
			Metrics:   metricRegistry,
		}, logger)
		if err != nil {
			return fmt.Errorf("init whatsapp client: %w", err)
		}
		defer waClient.Close()

		waClient.SetMessageProcessor(wa.NewDialogProcessor(waClient, engine, speechService, metricRegistry, logger))
		notifier = waClient

		waCtx, waCancel := context.WithCancel(ctx)
		defer waCancel()
		go func() {
			if err := waClient.Start(waCtx); err != nil {
				logger.Error("whatsapp client stopped", "error", err)
				stop()
			}
		}()
	}

	webhookProcessor := handlers.NewBackendWebhookProcessor(backendClient, notifier, metricRegistry, logger)
	webhookHandler := backend.NewWebhookHandler(logger, metricRegistry, cfg.WebhookUsernameMD5, cfg.WebhookPasswordMD5, webhookProcessor)

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, httpserver.Handlers{
		BackendWebhook: webhookHandler,
	}, cfg.PublicBasePath)
	httpSrv.SetDependencies(httpserver.Dependencies{
		Repository: store,
		Redis:      redisClient,
		Engine:     engine,
		Backend:    backendClient,
		Speech:     speechService,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}
