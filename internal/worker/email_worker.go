// Package worker turns queued credential e-mails into Mailgun deliveries.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"useradmin/internal/metrics"
	"useradmin/internal/models"
	"useradmin/pkg/mailer"
	"useradmin/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

const deliveryTimeout = 15 * time.Second

// EmailWorker handles deliveries from the credential e-mail queue.
type EmailWorker struct {
	sender mailer.Sender
	logger *logrus.Logger
}

// NewEmailWorker creates a new EmailWorker.
func NewEmailWorker(sender mailer.Sender, logger *logrus.Logger) *EmailWorker {
	return &EmailWorker{
		sender: sender,
		logger: logger,
	}
}

// Handle decodes one EmailJob and sends it. Malformed jobs are reported as
// rabbitmq.ErrUnprocessable so they are dropped; send failures are retried.
func (w *EmailWorker) Handle(msg amqp.Delivery) error {
	var job models.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return fmt.Errorf("bad email job: %v: %w", err, rabbitmq.ErrUnprocessable)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("email job has no recipient: %w", rabbitmq.ErrUnprocessable)
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := w.sender.Send(ctx, job.To, job.Subject, job.Text); err != nil {
		metrics.EmailDeliveryFailures.Inc()
		return fmt.Errorf("failed to send email to %s: %w", job.To, err)
	}

	w.logger.WithFields(logrus.Fields{
		"to":      job.To,
		"subject": job.Subject,
	}).Info("credential e-mail sent")
	return nil
}
