package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/config"
	"github.com/pageza/masterchef/backend/internal/api"
	"github.com/pageza/masterchef/backend/internal/database"
	"github.com/pageza/masterchef/backend/internal/llm"
	"github.com/pageza/masterchef/backend/internal/logging"
	"github.com/pageza/masterchef/backend/internal/router"
	"github.com/pageza/masterchef/backend/internal/server"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/internal/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "masterchef-api", string(cfg.Environment))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := database.Migrate(cfg, db, logger); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	healthChecks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	// Continue without Redis if it is not available
	var sessions session.Store
	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory session store", zap.Error(err))
		sessions = session.NewMemoryStore()
	} else {
		defer redisClient.Close()
		redisStore := session.NewRedisStore(redisClient, logger)
		sessions = redisStore
		healthChecks["redis"] = redisStore.Ping
	}

	completer, err := newCompleter(cfg, logger)
	if err != nil {
		return err
	}

	exportStore, err := newExportStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	profiles := service.NewProfileService(db)
	auth := service.NewAuthService(db, profiles, sessions, cfg.JWTSecret, cfg.JWTTTL, metrics, logger)
	history := service.NewHistoryService(db)
	recipes := service.NewRecipeService(db, metrics, logger)
	exports := service.NewExportService(recipes, exportStore, logger)
	recipes.SetExportCleaner(exports)
	gateway := service.NewRecipeGateway(completer, history, metrics, logger, service.GatewayConfig{
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	})

	handler := router.SetupRouter(router.Dependencies{
		Gateway:        gateway,
		Recipes:        recipes,
		Auth:           auth,
		Profiles:       profiles,
		History:        history,
		Exports:        exports,
		HealthChecks:   healthChecks,
		AllowedOrigins: cfg.AllowedOrigins,
		Registry:       registry,
		Logger:         logger,
	})

	return server.New(cfg, handler, logger).Run(ctx)
}

// newCompleter returns nil when no API key is configured so the gateway
// answers Unconfigured instead of failing at startup
func newCompleter(cfg *config.Config, logger *zap.Logger) (llm.Completer, error) {
	completer, err := llm.New(llm.Options{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
	})
	if errors.Is(err, llm.ErrMissingAPIKey) {
		logger.Warn("model API key is not set, recipe generation is disabled", zap.String("provider", cfg.LLMProvider))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("model gateway configured",
		zap.String("provider", completer.Provider()),
		zap.String("model", completer.Model()),
	)
	return completer, nil
}

// newExportStore returns nil, disabling exports, when no bucket is configured
func newExportStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.ObjectStore, error) {
	if cfg.S3Bucket == "" {
		logger.Info("S3_BUCKET_NAME not set, recipe export is disabled")
		return nil, nil
	}
	s3Cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("recipe export enabled", zap.String("bucket", s3Cfg.BucketName))
	return s3Cfg, nil
}
