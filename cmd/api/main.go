// Package main is the entrypoint for the Omnidash API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/omnidash/omnidash/internal/audit"
	"github.com/omnidash/omnidash/internal/auth"
	"github.com/omnidash/omnidash/internal/cache"
	"github.com/omnidash/omnidash/internal/config"
	"github.com/omnidash/omnidash/internal/handler"
	"github.com/omnidash/omnidash/internal/market"
	"github.com/omnidash/omnidash/internal/metrics"
	"github.com/omnidash/omnidash/internal/middleware"
	"github.com/omnidash/omnidash/internal/server"
	"github.com/omnidash/omnidash/internal/service"
	"github.com/omnidash/omnidash/internal/store"
	"github.com/omnidash/omnidash/internal/upstream"
	"github.com/omnidash/omnidash/internal/weather"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize the optional Redis cache
	var (
		cacheClient *cache.Cache
		quoteCache  market.QuoteCache
		auditPub    audit.Publisher
	)
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		quoteCache = cache.NewQuoteCache(cacheClient, cfg.QuoteCacheTTL)
		auditPub = audit.NewRedisPublisher(cacheClient.Client(), logger)
		logger.Info("connected to Redis")
	} else {
		auditPub = audit.NewNoop()
		logger.Info("running without Redis; quote cache and audit stream disabled")
	}

	// Initialize core components
	recorder := metrics.NewNoop()
	credStore := store.New()
	tokens := auth.NewTokenService(cfg.TokenSecret)

	// Initialize services
	profileService := service.NewProfileService(credStore, tokens, logger, recorder, auditPub)
	uploadService := service.NewUploadService(credStore, profileService, cfg.UploadDir, logger, recorder, auditPub)

	httpClient := upstream.NewHTTPClient()
	marketService := market.NewService(market.NewClient(cfg.MarketAPIURL, httpClient), quoteCache, logger, recorder)
	weatherService := weather.NewService(cfg.WeatherAPIEndpoint, httpClient, logger, recorder)

	// Initialize handlers
	h := handler.New()
	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		cacheChecker = cacheClient
	}
	healthHandler := handler.NewHealthHandler(cacheChecker, cfg.UploadDir)
	authHandler := handler.NewAuthHandler(profileService, uploadService, cfg.MaxUploadBytes, logger)
	marketHandler := handler.NewMarketHandler(marketService, logger)
	weatherHandler := handler.NewWeatherHandler(weatherService, logger)

	// Setup router
	r := setupRouter(h, healthHandler, authHandler, marketHandler, weatherHandler, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"cache_enabled", cfg.CacheEnabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	marketHandler *handler.MarketHandler,
	weatherHandler *handler.WeatherHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Authentication and profile management
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/me", authHandler.Me)
		r.Post("/edit", authHandler.Edit)
		r.Post("/upload-photo", authHandler.UploadPhoto)
		r.Post("/google-login", authHandler.GoogleLogin)
		r.Post("/logout", authHandler.Logout)
	})

	// Market-data proxy
	r.Route("/coins", func(r chi.Router) {
		r.Get("/", marketHandler.List)
		r.Get("/{symbol}", marketHandler.Get)
		r.Get("/{symbol}/graph", marketHandler.Graph)
	})

	// Weather proxy
	r.Get("/weather", weatherHandler.Get)

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return msg
}
