package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// publisher is the publishing half of *amqp.Channel.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Client holds the RabbitMQ connection and channel. Publish is safe for
// concurrent use.
type Client struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	publisher publisher
	queue     string
	logger    *zerolog.Logger
	mu        sync.Mutex // serializes Publish on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Handler processes one delivery. A non-nil error nacks the message.
type Handler func(msg amqp.Delivery) error

// NewClient connects to RabbitMQ, opens a channel and declares the queue.
func NewClient(cfg Config, logger *zerolog.Logger) (*Client, error) {
	if cfg.Queue == "" {
		return nil, errors.New("rabbitmq queue name is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
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
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.Queue, err)
	}

	logger.Info().Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:      conn,
		channel:   ch,
		publisher: ch,
		queue:     cfg.Queue,
		logger:    logger,
	}, nil
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
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the client's queue.
func (c *Client) Publish(body []byte) error {
	if c.publisher == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.publisher.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug().Str("queue", c.queue).Int("bytes", len(body)).Msg("message published")
	return nil
}

// Consume delivers messages from the queue to handler until ctx is done or
// the broker closes the channel. Successful messages are acked, failed ones
// nacked with the given requeue flag.
func (c *Client) Consume(ctx context.Context, handler Handler, requeue bool) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
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

	c.logger.Info().Str("queue", c.queue).Msg("waiting for messages")
	return consumeLoop(ctx, msgs, handler, requeue, c.logger)
}

func consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, handler Handler, requeue bool, logger *zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			dispatch(msg, handler, requeue, logger)
		}
	}
}

func dispatch(msg amqp.Delivery, handler Handler, requeue bool, logger *zerolog.Logger) {
	if err := handler(msg); err != nil {
		logger.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Bool("requeue", requeue).Msg("message failed")
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			logger.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to nack message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		logger.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to ack message")
	}
}
