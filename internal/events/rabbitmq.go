package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type rabbitPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
	mu      sync.Mutex
	logger  zerolog.Logger
}

// NewRabbitPublisher connects to RabbitMQ and declares a durable queue
// that events are published to through the default exchange.
func NewRabbitPublisher(url, queue string, logger zerolog.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	p := newRabbitPublisher(ch, queue, logger)
	p.conn = conn

	p.logger.Info().Str("queue", queue).Msg("event publisher connected")
	return p, nil
}

func newRabbitPublisher(ch amqpChannel, queue string, logger zerolog.Logger) *rabbitPublisher {
	return &rabbitPublisher{
		channel: ch,
		queue:   queue,
		logger:  logger.With().Str("component", "events-rabbitmq").Logger(),
	}
}

func (p *rabbitPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := e.Encode()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         e.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.At,
		})
	if err != nil {
		p.logger.Error().Err(err).Str("type", e.Type).Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}

	p.logger.Debug().Str("type", e.Type).Msg("event published")
	return nil
}

func (p *rabbitPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
