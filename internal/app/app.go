package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/stephenstephen/review/internal/auth"
	"github.com/stephenstephen/review/internal/cache"
	"github.com/stephenstephen/review/internal/config"
	"github.com/stephenstephen/review/internal/event"
	gqlhandler "github.com/stephenstephen/review/internal/handler/graphql"
	httphandler "github.com/stephenstephen/review/internal/handler/http"
	"github.com/stephenstephen/review/internal/repository/postgres"
	"github.com/stephenstephen/review/internal/service"
	"github.com/stephenstephen/review/internal/storage/local"
	"github.com/stephenstephen/review/migrations"
	"github.com/stephenstephen/review/pkg/database"
	"github.com/stephenstephen/review/pkg/health"
	pkgkafka "github.com/stephenstephen/review/pkg/kafka"
	"github.com/stephenstephen/review/pkg/middleware"
	"github.com/stephenstephen/review/pkg/tracing"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "review-service"

const idempotencyTTL = 24 * time.Hour

// App wires together all dependencies and runs the review service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	invalidator    *pkgkafka.Consumer
	tracerShutdown tracing.Shutdown
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Redis and Kafka are optional: when disabled the listing cache and domain
// events are switched off.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	if err := prometheus.Register(database.NewPoolStatsCollector(pool, ServiceName)); err != nil {
		logger.Warn("pool stats collector not registered", slog.String("error", err.Error()))
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// Listing cache.
	var listingCache *cache.Cache
	if cfg.RedisEnabled {
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// Listings are served uncached.
			logger.Warn("redis unavailable, listing cache disabled", slog.String("error", err.Error()))
		} else {
			a.redis = client
			listingCache = cache.New(client, cfg.CacheTTL, logger)
			healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			})
			logger.Info("redis listing cache enabled", slog.String("addr", cfg.RedisAddr))
		}
	}

	// Domain events.
	var eventProducer *event.Producer
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		eventProducer = event.NewProducer(a.producer, logger)
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

		if a.redis != nil {
			a.invalidator = event.NewInvalidator(pkgkafka.ConsumerConfig{
				Brokers: cfg.KafkaBrokers,
				GroupID: cfg.KafkaConsumerGroup,
			}, listingCache, pkgkafka.NewRedisIdempotencyStore(a.redis, "review:events:", idempotencyTTL), logger)
		}
	}

	images, err := local.New(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	// Build the dependency graph.
	productRepo := postgres.NewProductRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry)

	productService := service.NewProductService(productRepo, reviewRepo, images, listingCache, eventProducer, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, userRepo, listingCache, eventProducer, logger)
	userService := service.NewUserService(userRepo, jwtManager, listingCache, eventProducer, logger, cfg.AdminEmails)

	schema, err := gqlhandler.NewSchema(gqlhandler.NewResolver(productService, reviewService, userService, logger))
	if err != nil {
		a.closeResources()
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := httphandler.NewRouter(httphandler.RouterConfig{
		ServiceName:        ServiceName,
		Products:           productService,
		Reviews:            reviewService,
		Users:              userService,
		Images:             images,
		Tokens:             jwtManager.Validator(),
		Health:             healthHandler,
		GraphQL:            gqlhandler.NewHandler(schema, logger),
		CORS:               cors,
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
		UploadMaxBytes:     cfg.UploadMaxBytes,
		PprofAllowedCIDRs:  cfg.PprofAllowedCIDRs,
		Logger:             logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and the cache invalidation consumer and blocks
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if a.invalidator != nil {
		go func() {
			if err := a.invalidator.Start(consumerCtx); err != nil {
				errCh <- fmt.Errorf("cache invalidation consumer: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("component failed", slog.String("error", runErr.Error()))
	}

	stopConsumer()
	if err := a.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases the clients opened by NewApp. It tolerates
// partially initialized apps.
func (a *App) closeResources() {
	if a.invalidator != nil {
		if err := a.invalidator.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
