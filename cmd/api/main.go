// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/biolink/internal/admin"
	"github.com/carterperez-dev/biolink/internal/auth"
	"github.com/carterperez-dev/biolink/internal/billing"
	"github.com/carterperez-dev/biolink/internal/bio"
	"github.com/carterperez-dev/biolink/internal/config"
	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/entitlement"
	"github.com/carterperez-dev/biolink/internal/health"
	"github.com/carterperez-dev/biolink/internal/mail"
	"github.com/carterperez-dev/biolink/internal/middleware"
	"github.com/carterperez-dev/biolink/internal/oauth"
	"github.com/carterperez-dev/biolink/internal/server"
	"github.com/carterperez-dev/biolink/internal/session"
	"github.com/carterperez-dev/biolink/internal/user"
	"github.com/carterperez-dev/biolink/migrations"
)

const drainDelay = 2 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load() //nolint:errcheck

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			10*time.Second,
		)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	database, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck

	if err := migrations.Up(ctx, database.DB.DB); err != nil {
		return err
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close() //nolint:errcheck

	sessionStore := session.NewRedisStore(rdb.Client)
	sessions, err := session.NewManager(sessionStore, cfg.Session)
	if err != nil {
		return err
	}

	gate := entitlement.NewGate(cfg.Entitlement.FreeMaxLinks)

	dispatcher := mail.NewDispatcher(cfg.SMTP, cfg.App.BaseURL, logger)

	userRepo := user.NewRepository(database.DB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, gate)

	authService := auth.NewService(userService, dispatcher, logger)
	authHandler := auth.NewHandler(authService, sessions, cfg.App.BaseURL)

	oauthHandler := oauth.NewHandler(
		cfg.OAuth.Google,
		userService,
		sessions,
		cfg.App.BaseURL,
		cfg.Session.Secure,
		logger,
	)

	bioRepo := bio.NewRepository(database.DB)
	bioService := bio.NewService(bioRepo, userService, gate)
	bioHandler := bio.NewHandler(bioService)

	stripeProvider := billing.NewStripeProvider(cfg.Stripe)
	billingService := billing.NewService(stripeProvider, userService, logger)
	billingHandler := billing.NewHandler(billingService)

	healthHandler := health.NewHandler(database, rdb)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    database.Stats,
		RedisStats: rdb.PoolStats,
		RedisPing:  rdb.Ping,
		DBPing:     database.Ping,
		Sessions:   sessions,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	authn := middleware.Authenticator(sessions)
	tiered := middleware.TieredRateLimiter(
		rdb.Client,
		userService,
		middleware.DefaultTiers,
	)

	// Authenticated routes resolve the session first, then rate-limit
	// per user with the paid tier.
	authenticated := func(next http.Handler) http.Handler {
		return authn(tiered(next))
	}

	ipLimiter := middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
		Limit: redis_rate.Limit{
			Rate:   cfg.RateLimit.Requests,
			Burst:  cfg.RateLimit.Burst,
			Period: cfg.RateLimit.Window,
		},
		FailOpen: true,
	})

	router := srv.Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(ipLimiter.Handler)

	healthHandler.RegisterRoutes(router)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticated)
		oauthHandler.RegisterRoutes(r)
		userHandler.RegisterRoutes(r, authenticated)
		bioHandler.RegisterRoutes(r, authenticated)
		billingHandler.RegisterRoutes(r, authenticated)
		adminHandler.RegisterRoutes(
			r,
			middleware.RequireAdminToken(cfg.App.AdminToken),
		)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil &&
		!errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
