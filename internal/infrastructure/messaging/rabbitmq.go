package messaging

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends one message to an exchange
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error
}

// Client is a RabbitMQ connection with a confirm-mode channel
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// confirmation is the broker's pending answer to one publish
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// Dial connects to the broker and puts the channel in confirm mode
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &Client{conn: conn, ch: ch}, nil
}

// DeclareTopicExchange declares a durable topic exchange
func (c *Client) DeclareTopicExchange(name string) error {
	if err := c.ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}
	return nil
}

// Publish sends msg and waits for the broker to confirm that delivery tag
func (c *Client) Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	conf, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}
	if conf == nil {
		return errors.New("RabbitMQ channel is not in confirm mode")
	}
	return awaitConfirm(ctx, conf, exchange, routingKey)
}

func awaitConfirm(ctx context.Context, conf confirmation, exchange, routingKey string) error {
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("no confirm for %s/%s: %w", exchange, routingKey, err)
	}
	if !acked {
		return fmt.Errorf("broker rejected message for %s/%s", exchange, routingKey)
	}
	return nil
}

// Ping reports whether the connection is still open
func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("RabbitMQ connection is closed")
	}
	return nil
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	var errs []error
	if c.ch != nil {
		errs = append(errs, c.ch.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}

var (
	_ Publisher    = (*Client)(nil)
	_ confirmation = (*amqp.DeferredConfirmation)(nil)
)
