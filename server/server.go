package server

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"useradmin/apperrors"
	"useradmin/config"
	"useradmin/pkg/logger"
	"useradmin/pkg/metrics"
	"useradmin/server/middleware/limiter"
	"useradmin/server/middleware/security"
	"useradmin/server/routes"
	"useradmin/services/frontend"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Server is the preview server: the browser client plus a proxy to the
// user API.
type Server struct {
	App *fiber.App
	cfg *config.Config
	rdb *redis.Client
	log *logger.Logger
}

// NewServer builds the app. rdb is optional; without it rate limit buckets
// live in memory.
func NewServer(cfg *config.Config, rdb *redis.Client, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	log = log.Component("server")

	gen, err := frontend.New(frontend.Options{
		Title:               cfg.Frontend.Title,
		APIBaseURL:          "/api",
		NotificationTimeout: cfg.Client.NotificationTimeout,
		AssetPrefix:         frontend.ServerAssetPrefix,
		Logger:              log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	errorConfig := apperrors.HandlerConfig{
		Logger:             log,
		ShowInternalErrors: cfg.Server.Development,
		OnError: func(c *fiber.Ctx, err *apperrors.AppError) {
			metrics.RecordError(string(err.Code), strconv.Itoa(err.StatusCode))
		},
	}

	app := fiber.New(fiber.Config{
		AppName:               "UserAdmin",
		ServerHeader:          "UserAdmin",
		Views:                 gen.Engine(),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          apperrors.Handler(errorConfig),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(metrics.HTTPMetricsMiddleware())
	setupLogging(app, log)

	app.Use(security.New(security.Config{
		Development:    cfg.Server.Development,
		ConnectSources: connectSources(cfg.API.BaseURL),
	}))

	app.Use(limiter.New(limiter.Config{
		Capacity:     cfg.RateLimit.Capacity,
		RefillRate:   cfg.RateLimit.RefillRate,
		RefillPeriod: cfg.RateLimit.RefillPeriod,
		Storage:      limiterStorage(rdb),
		Next: func(c *fiber.Ctx) bool {
			switch c.Path() {
			case "/metrics", "/healthz", "/readyz":
				return true
			}
			return false
		},
		OnStorageError: func(c *fiber.Ctx, err error) {
			log.WithError(err).WithField("path", c.Path()).Warn("rate limiter storage unavailable")
		},
	}))

	routes.RegisterRoutes(app, routes.Deps{
		Generator:  gen,
		APIBaseURL: cfg.API.BaseURL,
		Redis:      rdb,
	})

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.New(apperrors.ErrCodeNotFound, "Page not found", fiber.StatusNotFound).
			WithDetails("path", c.Path())
	})

	return &Server{
		App: app,
		cfg: cfg,
		rdb: rdb,
		log: log,
	}, nil
}

func limiterStorage(rdb *redis.Client) limiter.Storage {
	if rdb == nil {
		return limiter.NewMemoryStorage()
	}
	return limiter.NewRedisStorage(rdb, time.Hour)
}

// connectSources allows the page to reach the API origin directly as well
// as through the proxy.
func connectSources(apiBaseURL string) []string {
	sources := []string{"'self'"}
	if u, err := url.Parse(apiBaseURL); err == nil && u.Host != "" {
		sources = append(sources, u.Scheme+"://"+u.Host)
	}
	return sources
}

func (s *Server) Start() error {
	addr := s.cfg.ServerAddress()
	s.log.WithField("addr", addr).Info("Starting server")
	return s.App.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server...")
	return s.App.ShutdownWithContext(ctx)
}
