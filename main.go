package main

import (
	"os"
	"os/signal"
	"syscall"

	"useradmin/internal/config"
	"useradmin/internal/database"
	"useradmin/internal/repositories"
	"useradmin/internal/services"
	applogger "useradmin/pkg/logger"
	"useradmin/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := applogger.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if cfg.DatabaseAutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.WithError(err).Fatal("Failed to migrate database")
		}
	}
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Credential e-mails ---
	// Without RabbitMQ the generated passwords are only logged as dropped.
	var mailer services.CredentialMailer = services.NewLogMailer(logger)
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize RabbitMQ client")
		}
		mailer = services.NewQueueMailer(mqClient, cfg.RabbitMQEmailQueue)
	} else {
		logger.Warn("RABBITMQ_URL is not set; credential e-mails will not be delivered")
	}

	app := newApp(cfg, userRepo, mailer, logger)

	// --- Start HTTP Server ---
	logger.WithField("port", cfg.Port).Info("Starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logger.WithError(err).Error("Error during Fiber shutdown")
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			logger.WithError(err).Error("Error closing RabbitMQ client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server gracefully stopped")
}
