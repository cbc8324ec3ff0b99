package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AdminCredentials struct {
	User     string
	Password string
}

func SetupRoutes(app *fiber.App, handler *Handler, admin AdminCredentials) {
	// Global middlewares
	app.Use(RequestID())
	app.Use(ErrorHandler())

	// Health checks (sem rate limiting)
	app.Get("/health", handler.HealthCheck)
	app.Get("/ready", handler.ReadinessCheck)

	// Metrics endpoint para Prometheus (sem rate limiting)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation (sem rate limiting)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Use(RateLimiter(100))
	v1.Use(PrometheusMiddleware())

	v1.Get("/transactions", handler.ListTransactions)
	v1.Get("/holdings", handler.GetHoldings)
	v1.Get("/export.csv", handler.ExportCSV)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(BasicAuth(admin))
	adminGroup.Delete("/cache", handler.InvalidateCache)
	adminGroup.Get("/stats", handler.GetSystemStats)
}

func BasicAuth(admin AdminCredentials) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{admin.User: admin.Password},
		Unauthorized: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		},
	})
}
