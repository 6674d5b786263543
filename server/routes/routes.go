package routes

import (
	"useradmin/server/handlers"
	"useradmin/services/frontend"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	Generator  *frontend.Generator
	APIBaseURL string
	Redis      *redis.Client
}

// RegisterRoutes mounts the page, its assets, the API proxy and the
// operational endpoints.
func RegisterRoutes(app *fiber.App, deps Deps) {
	health := handlers.NewHealthCheckHandler(deps.APIBaseURL, deps.Redis)

	app.Get("/", handlers.HandleIndex(deps.Generator))
	app.Get("/assets/:file", handlers.HandleAsset())

	app.Get("/healthz", health.HandleLiveness())
	app.Get("/readyz", health.HandleReadiness())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.All("/api/*", handlers.HandleAPIProxy(deps.APIBaseURL))
}
