package rabbitmq

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAcknowledger struct {
	mock.Mock
}

func (m *mockAcknowledger) Ack(multiple bool) error {
	args := m.Called(multiple)
	return args.Error(0)
}

func (m *mockAcknowledger) Nack(multiple, requeue bool) error {
	args := m.Called(multiple, requeue)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URL: "amqp://localhost"}.withDefaults()
	assert.Equal(t, "catalog", cfg.Exchange)
	assert.Equal(t, "catalog_events", cfg.Queue)
	assert.Equal(t, "product.*", cfg.BindingKey)

	cfg = Config{Exchange: "shop", Queue: "audit", BindingKey: "product.deleted"}.withDefaults()
	assert.Equal(t, "shop", cfg.Exchange)
	assert.Equal(t, "audit", cfg.Queue)
	assert.Equal(t, "product.deleted", cfg.BindingKey)
}

func TestSettleAcksOnSuccess(t *testing.T) {
	ack := new(mockAcknowledger)
	ack.On("Ack", false).Return(nil)

	settle(ack, 7, nil, quietLogger())

	ack.AssertExpectations(t)
	ack.AssertNotCalled(t, "Nack", mock.Anything, mock.Anything)
}

func TestSettleRequeuesOnHandlerError(t *testing.T) {
	ack := new(mockAcknowledger)
	ack.On("Nack", false, true).Return(errors.New("channel closed"))

	settle(ack, 8, errors.New("bad payload"), quietLogger())

	ack.AssertExpectations(t)
	ack.AssertNotCalled(t, "Ack", mock.Anything)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{log: quietLogger()}
	assert.Error(t, c.Publish("product.created", []byte(`{}`)))
	assert.Error(t, c.ConsumeCatalogEvents(nil))
}
