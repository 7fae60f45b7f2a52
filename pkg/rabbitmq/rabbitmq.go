package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Default topology for catalog lifecycle events.
const (
	DefaultExchange   = "catalog"
	DefaultQueue      = "catalog_events"
	DefaultBindingKey = "product.*"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	mu       sync.Mutex // guards publishes on channel
	exchange string
	queue    string
	log      *logrus.Logger
}

// Config holds RabbitMQ connection details. Empty topology fields take the
// defaults above.
type Config struct {
	URL        string
	Exchange   string
	Queue      string
	BindingKey string
}

func (cfg Config) withDefaults() Config {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.BindingKey == "" {
		cfg.BindingKey = DefaultBindingKey
	}
	return cfg
}

// NewClient connects to RabbitMQ and declares the durable topic exchange,
// the durable event queue and the binding between them.
func NewClient(cfg Config, logger *logrus.Logger) (*Client, error) {
	cfg = cfg.withDefaults()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"exchange": cfg.Exchange,
		"queue":    cfg.Queue,
	}).Info("RabbitMQ client connected")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		log:      logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %w", cfg.Queue, cfg.Exchange, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to the catalog exchange under
// routingKey.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.log.WithField("routing_key", routingKey).Debug("Published catalog event")
	return nil
}

// ConsumeCatalogEvents delivers messages from the event queue to handler
// on a background goroutine. A nil error acks the message; anything else
// nacks it with requeue.
func (c *Client) ConsumeCatalogEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", c.queue).Info("Waiting for catalog events")
	go c.dispatch(msgs, handler)
	return nil
}

func (c *Client) dispatch(msgs <-chan amqp.Delivery, handler func(msg amqp.Delivery) error) {
	for msg := range msgs {
		settle(msg, msg.DeliveryTag, handler(msg), c.log)
	}
}

// acknowledger is the part of a delivery that settles it.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle acks or nacks a delivery depending on the handler result.
func settle(ack acknowledger, tag uint64, handlerErr error, logger *logrus.Logger) {
	entry := logger.WithField("delivery_tag", tag)
	if handlerErr != nil {
		entry.WithError(handlerErr).Warn("Error processing message, requeueing")
		if err := ack.Nack(false, true); err != nil {
			entry.WithError(err).Error("Error nacking message")
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		entry.WithError(err).Error("Error acking message")
	}
}
