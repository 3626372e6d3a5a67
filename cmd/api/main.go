// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis_rate/v10"

	"github.com/nhpc-ltd/blog-api/internal/admin"
	"github.com/nhpc-ltd/blog-api/internal/auth"
	"github.com/nhpc-ltd/blog-api/internal/cache"
	"github.com/nhpc-ltd/blog-api/internal/category"
	"github.com/nhpc-ltd/blog-api/internal/config"
	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/engagement"
	"github.com/nhpc-ltd/blog-api/internal/events"
	"github.com/nhpc-ltd/blog-api/internal/health"
	"github.com/nhpc-ltd/blog-api/internal/mail"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
	"github.com/nhpc-ltd/blog-api/internal/moderation"
	"github.com/nhpc-ltd/blog-api/internal/post"
	"github.com/nhpc-ltd/blog-api/internal/revalidate"
	"github.com/nhpc-ltd/blog-api/internal/server"
	"github.com/nhpc-ltd/blog-api/internal/user"
	"github.com/nhpc-ltd/blog-api/migrations"
)

const (
	drainDelay    = 5 * time.Second
	purgeInterval = time.Hour
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.DB, logger); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	if cfg.IsDevelopment() {
		if err := ensureKeyPair(cfg.JWT, logger); err != nil {
			return err
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	var (
		publisher events.Publisher = events.Nop{}
		natsPub   *events.NATSPublisher
	)
	if cfg.NATS.Enabled {
		natsPub, err = events.Connect(cfg.NATS, cfg.App.Name, logger)
		if err != nil {
			return err
		}
		publisher = natsPub
		logger.Info("nats connected", "url", cfg.NATS.URL)
	}

	appCache := cache.New(redis.Client)
	revalidator := revalidate.New(appCache, publisher, logger)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authOpts := []auth.Option{auth.WithLogger(logger)}
	if cfg.ERP.URL != "" {
		authOpts = append(authOpts, auth.WithEmployeeAuthenticator(auth.NewERPClient(cfg.ERP)))
	}
	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, redis.Client, authOpts...)

	mailer, err := mail.New(cfg.SMTP, logger)
	if err != nil {
		return err
	}
	resetSvc := auth.NewResetService(
		auth.NewResetRepository(db.DB),
		userSvc,
		authRepo,
		mailer,
		cfg.App.PublicURL,
		cfg.Reset.TokenTTL,
		logger,
	)

	var google *auth.GoogleOAuth
	if cfg.OAuth.Google.Enabled() {
		google = auth.NewGoogleOAuth(cfg.OAuth.Google, redis.Client)
	}
	authHandler := auth.NewHandler(authSvc, resetSvc, google, logger)

	categorySvc := category.NewService(
		category.NewRepository(db.DB),
		appCache,
		cfg.Cache.CategoriesTTL,
		revalidator,
	)
	categoryHandler := category.NewHandler(categorySvc)

	postRepo := post.NewRepository(db.DB)
	postSvc := post.NewService(postRepo, userSvc, appCache, cfg.Cache.FeedTTL, revalidator)
	postHandler := post.NewHandler(postSvc)

	likeSvc := engagement.NewService(engagement.NewRepository(db.DB), postRepo, revalidator)
	likeHandler := engagement.NewHandler(likeSvc)

	moderationHandler := moderation.NewHandler(
		moderation.NewService(postRepo, revalidator, logger),
	)

	deps := []health.Dependency{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}
	if natsPub != nil {
		deps = append(deps, health.Dependency{Name: "nats", Checker: natsPub})
	}
	healthHandler := health.NewHandler(deps...)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.Client.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Content: admin.ContentCounter{
			Posts:      postRepo.CountByStatus,
			Users:      userSvc.Count,
			Categories: categorySvc.Count,
			Likes:      likeSvc.CountAll,
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	adminOnly := middleware.RequireAdmin

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthRequests),
		FailOpen: true,
		Prefix:   "auth:",
	}).Handler

	userWrites := middleware.PerMinute(cfg.RateLimit.UserWrites, cfg.RateLimit.UserWrites)
	writeLimit := middleware.RoleRateLimiter(redis.Client, map[string]redis_rate.Limit{
		"":                   userWrites,
		middleware.RoleUser:  userWrites,
		middleware.RoleAdmin: middleware.PerMinute(cfg.RateLimit.AdminWrites, cfg.RateLimit.AdminWrites),
	})

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, authLimiter)

		userHandler.RegisterRoutes(r, authenticator, optionalAuth)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		categoryHandler.RegisterRoutes(r, authenticator, adminOnly)

		r.Route("/posts", func(r chi.Router) {
			postHandler.RegisterRoutes(r, authenticator, optionalAuth, writeLimit)
			likeHandler.RegisterRoutes(r, authenticator, writeLimit)
		})

		moderationHandler.RegisterRoutes(r, authenticator, adminOnly, writeLimit)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	go purgeExpired(ctx, logger, authSvc, resetSvc)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := publisher.Close(); err != nil {
		logger.Error("nats drain error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeExpired drops expired refresh and reset tokens until ctx ends.
func purgeExpired(ctx context.Context, logger *slog.Logger, targets ...purger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		for _, t := range targets {
			n, err := t.PurgeExpired(ctx)
			if err != nil && ctx.Err() == nil {
				logger.Warn("purge expired tokens", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired tokens", "count", n)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ensureKeyPair creates a signing key pair on first start in development.
func ensureKeyPair(cfg config.JWTConfig, logger *slog.Logger) error {
	_, err := os.Stat(cfg.PrivateKeyPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	logger.Warn("jwt key pair missing, generating one",
		"private_key_path", cfg.PrivateKeyPath,
	)
	return auth.GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
