package services

import (
	"context"
	"encoding/json"
	"fmt"

	"useradmin/internal/models"

	"github.com/sirupsen/logrus"
)

// CredentialMailer delivers generated credentials out of band.
type CredentialMailer interface {
	SendCredentialEmail(ctx context.Context, address, subject, body string) error
}

// Publisher is the part of the RabbitMQ client QueueMailer needs.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// QueueMailer hands credential e-mails to the email worker through RabbitMQ.
type QueueMailer struct {
	publisher Publisher
	queue     string
}

// NewQueueMailer creates a QueueMailer publishing on the default exchange to queue.
func NewQueueMailer(publisher Publisher, queue string) *QueueMailer {
	return &QueueMailer{
		publisher: publisher,
		queue:     queue,
	}
}

// SendCredentialEmail queues an EmailJob.
func (m *QueueMailer) SendCredentialEmail(ctx context.Context, address, subject, body string) error {
	payload, err := json.Marshal(models.EmailJob{To: address, Subject: subject, Text: body})
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}
	if err := m.publisher.Publish("", m.queue, payload); err != nil {
		return fmt.Errorf("failed to queue email to %s: %w", address, err)
	}
	return nil
}

// LogMailer is used when no queue is configured. It records that an e-mail
// would have been sent, without its body.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a new LogMailer.
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendCredentialEmail logs the recipient and subject.
func (m *LogMailer) SendCredentialEmail(ctx context.Context, address, subject, body string) error {
	m.logger.WithFields(logrus.Fields{
		"to":      address,
		"subject": subject,
	}).Warn("email delivery is not configured; credential e-mail dropped")
	return nil
}
