// Command email-worker delivers the queued credential e-mails through Mailgun.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"useradmin/internal/config"
	"useradmin/internal/worker"
	applogger "useradmin/pkg/logger"
	"useradmin/pkg/mailer"
	"useradmin/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

const prefetch = 16

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := applogger.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if !cfg.MailgunConfigured() {
		logger.Fatal("Mailgun not configured")
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize RabbitMQ client")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	emailWorker := worker.NewEmailWorker(mg, logger)

	done, err := mqClient.Consume(cfg.RabbitMQEmailQueue, prefetch, emailWorker.Handle)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start consumer")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutting down email worker...")
	case <-done:
		logger.Warn("Delivery channel closed")
	}

	if err := mqClient.Close(); err != nil {
		logger.WithError(err).Error("Error closing RabbitMQ client")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	logger.Info("Email worker stopped")
}
