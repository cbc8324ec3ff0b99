package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AccessLog    bool
}

// NewApp cria o app fiber com os middlewares de borda. As rotas são
// registradas depois por SetupRoutes.
func NewApp(cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ServerHeader:            "T212-Exporter",
		AppName:                 "Trading 212 Exporter v" + version,
		ReadTimeout:             cfg.ReadTimeout,
		WriteTimeout:            cfg.WriteTimeout,
		IdleTimeout:             120 * time.Second,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		BodyLimit:               1 * 1024 * 1024,
		DisableStartupMessage:   true,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${respHeader:X-Request-ID}\n",
		}))
	}
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders: "X-Request-ID,Content-Disposition",
	}))

	return app
}
