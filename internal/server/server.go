// Package server assembles the Fiber application: middleware, error
// handling and the route table.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"myflix/internal/config"
	"myflix/internal/handlers"
	"myflix/internal/middleware"
	"myflix/internal/services"
)

const bodyLimit = 10 * 1024 * 1024

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth   *services.AuthService
	Users  *services.UserService
	Movies *services.MovieService
	Images *services.ImageService
}

// New builds the Fiber app with all routes registered.
func New(cfg *config.Config, svcs Services, logger *zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "myflix",
		UnescapePath:          true,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(logger),
	})

	// --- Middleware ---
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		Output: logger,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	authRequired := middleware.AuthRequired(svcs.Auth, logger)

	handlers.NewAuthHandler(svcs.Auth, logger).RegisterRoutes(app)
	handlers.NewUserHandler(svcs.Users, logger).RegisterRoutes(app, authRequired)
	handlers.NewMovieHandler(svcs.Movies, logger).RegisterRoutes(app, authRequired)
	if svcs.Images != nil {
		handlers.NewImageHandler(svcs.Images, logger).RegisterRoutes(app, authRequired)
	}

	return app
}
