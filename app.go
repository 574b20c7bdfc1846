package main

import (
	"time"

	"useradmin/internal/config"
	"useradmin/internal/handlers"
	"useradmin/internal/middleware"
	"useradmin/internal/repositories"
	"useradmin/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// newApp wires the services and HTTP routes on top of userRepo.
func newApp(cfg *config.Config, userRepo repositories.UserRepository, mailer services.CredentialMailer, logger *logrus.Logger) *fiber.App {
	credentialService := services.NewCredentialService(userRepo, cfg.BcryptCost, cfg.APIKeyMaxAttempts, logger)
	authService := services.NewAuthService(userRepo, logger)
	userService := services.NewUserService(userRepo, credentialService, mailer, logger)

	userHandler := handlers.NewUserHandler(userService, handlers.Paging{
		DefaultLimit: cfg.PageLimitDefault,
		MaxLimit:     cfg.PageLimitMax,
	}, logger)
	accountHandler := handlers.NewAccountHandler(userService, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: cfg.Env != "development",
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		Output: logger.Writer(),
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// --- API Routes ---
	api := app.Group("/api")
	authRequired := middleware.APIKeyRequired(authService)
	basicAuth := middleware.BasicAuth(authService, cfg.AuthRealm)

	accountHandler.RegisterRoutes(api, basicAuth, authRequired)
	userHandler.RegisterRoutes(api, authRequired)

	return app
}
