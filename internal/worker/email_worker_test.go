package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"useradmin/internal/models"
	"useradmin/pkg/logger"
	"useradmin/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, text string) error {
	args := m.Called(ctx, to, subject, text)
	return args.Error(0)
}

func delivery(t *testing.T, job models.EmailJob) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return amqp.Delivery{Body: body}
}

func TestEmailWorker_Handle(t *testing.T) {
	sender := new(MockSender)
	worker := NewEmailWorker(sender, logger.Discard())

	sender.On("Send", mock.Anything, "jan@example.com", "Your password has been reset", "Hello Jan").Return(nil).Once()

	err := worker.Handle(delivery(t, models.EmailJob{To: "jan@example.com", Subject: "Your password has been reset", Text: "Hello Jan"}))
	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestEmailWorker_Handle_SendFailureIsRetryable(t *testing.T) {
	sender := new(MockSender)
	worker := NewEmailWorker(sender, logger.Discard())

	sender.On("Send", mock.Anything, "jan@example.com", mock.Anything, mock.Anything).Return(errors.New("mailgun unavailable")).Once()

	err := worker.Handle(delivery(t, models.EmailJob{To: "jan@example.com", Subject: "s", Text: "t"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, rabbitmq.ErrUnprocessable))
}

func TestEmailWorker_Handle_Unprocessable(t *testing.T) {
	sender := new(MockSender)
	worker := NewEmailWorker(sender, logger.Discard())

	err := worker.Handle(amqp.Delivery{Body: []byte("{not json")})
	assert.ErrorIs(t, err, rabbitmq.ErrUnprocessable)

	err = worker.Handle(delivery(t, models.EmailJob{Subject: "s", Text: "t"}))
	assert.ErrorIs(t, err, rabbitmq.ErrUnprocessable)

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
