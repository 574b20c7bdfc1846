package rabbitmq

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type recordingAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestDispatch(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := &Client{logger: log}

	tests := []struct {
		name     string
		err      error
		acked    bool
		requeued bool
	}{
		{"success is acked", nil, true, false},
		{"transient failure is requeued", errors.New("smtp timeout"), false, true},
		{"unprocessable is dropped", fmt.Errorf("bad json: %w", ErrUnprocessable), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			client.dispatch(amqp.Delivery{Acknowledger: ack, DeliveryTag: 1}, func(amqp.Delivery) error { return tt.err })

			assert.Equal(t, tt.acked, ack.acked)
			assert.Equal(t, !tt.acked, ack.nacked)
			assert.Equal(t, tt.requeued, ack.requeued)
		})
	}
}
