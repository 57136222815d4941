// Package main is the entry point for the property-match-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/internal/app/session"
	"property-match-service/internal/config"
	"property-match-service/internal/domain"
	"property-match-service/internal/infra/postgres"
	"property-match-service/internal/infra/postgres/migrations"
	rediscache "property-match-service/internal/infra/redis"
	"property-match-service/internal/infra/source/registry"
	"property-match-service/internal/job"
	"property-match-service/internal/logger"
	"property-match-service/internal/transport/httpserver"
	"property-match-service/internal/transport/httpserver/middleware"
	"property-match-service/internal/validator"
	"property-match-service/pkg/locker"
)

const (
	propertyErrorMessage = "Failed to load property matches. Please try again."
	providerErrorMessage = "Failed to load service providers. Please try again."
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
			Env:     cfg.App.Env,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting property-match-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("source_driver", cfg.Source.Driver),
	)

	// Connect to database
	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
			LogLevel:     cfg.Database.LogLevel,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	repo := postgres.NewRepository(db, log.Logger)

	// Upstreams
	backend := registry.NewBaaS(cfg.Source, log.Named("baas").Logger)
	feeds := registry.NewFeeds(cfg.Source, backend, log.Logger)

	var properties domain.PropertySource = repo
	if cfg.Source.Driver == config.SourceDriverREST {
		properties = backend
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))

	// A nil interface, not a typed nil, disables caching.
	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("provider cache enabled",
			zap.Duration("ttl", cfg.Cache.ProviderTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("cache disabled")
	}

	// Services
	matchSvc := service.NewMatchService(properties, cfg.Source.CandidateLimit, cfg.Search.PageSize, log.Logger)
	providerSvc := service.NewProviderService(backend, cache, cfg.Cache.ProviderTTL, cfg.Search.PageSize, log.Logger)
	syncSvc := service.NewSyncService(repo, feeds, log.Logger)

	// Sessions
	propertySessions, err := session.NewRegistry("properties", cfg.Session.MaxSessions, cfg.Session.IdleTTL,
		func() *session.Session[domain.SearchQuery, domain.SearchResultItem] {
			return session.New(matchSvc.Search, session.Config{
				Debounce:     cfg.Search.Debounce,
				Timeout:      cfg.Search.RequestTimeout,
				ErrorMessage: propertyErrorMessage,
			}, log.Logger)
		}, log.Logger)
	if err != nil {
		log.Fatal("failed to create property sessions", zap.Error(err))
	}
	defer propertySessions.Close()

	providerSessions, err := session.NewRegistry("providers", cfg.Session.MaxSessions, cfg.Session.IdleTTL,
		func() *session.Session[domain.ServiceQuery, domain.ServiceProvider] {
			return session.New(providerSvc.Search, session.Config{
				Debounce:     cfg.Search.Debounce,
				Timeout:      cfg.Search.RequestTimeout,
				ErrorMessage: providerErrorMessage,
			}, log.Logger)
		}, log.Logger)
	if err != nil {
		log.Fatal("failed to create provider sessions", zap.Error(err))
	}
	defer providerSessions.Close()

	// HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:        cfg.App.Port,
			BodyLimit:   1024 * 1024, // 1MB
			Debug:       cfg.App.Debug,
			CORSOrigins: cfg.App.CORSOrigins,
		},
		httpserver.Dependencies{
			Match:            matchSvc,
			Providers:        providerSvc,
			Sync:             syncSvc,
			PropertySessions: propertySessions,
			ProviderSessions: providerSessions,
			Validator:        validator.New(),
			Readiness: []middleware.ReadinessCheck{
				func(ctx context.Context) error { return postgres.HealthCheck(ctx, db) },
				func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			},
		},
		log.Logger,
	)

	// Background jobs
	reaper := job.NewSessionReaper(cfg.Session.ReapInterval, log.Logger, propertySessions, providerSessions)
	reaper.Start()

	var scheduler *job.SyncScheduler
	if cfg.Sync.Enabled {
		scheduler = job.NewSyncScheduler(
			syncSvc,
			job.SyncConfig{
				Interval:  cfg.Sync.Interval,
				Timeout:   cfg.Sync.Timeout,
				OnStartup: cfg.Sync.OnStartup,
			},
			log.Logger,
			locker.NewRedisLocker(redisClient, log.Logger),
		)
		scheduler.Start(cfg.Sync.OnStartup)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		scheduler.Stop()
		reaper.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
