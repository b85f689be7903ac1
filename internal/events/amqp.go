package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher writes events to a durable topic exchange, routed by event type.
// A dropped connection is re-dialed on the next publish.
type AMQPPublisher struct {
	url          string
	exchangeName string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchangeName string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchangeName: exchangeName}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connectLocked() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = channel
	return nil
}

// Publish sends one event. On a connection error it reconnects once and retries.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publishLocked(ctx, event.Type, body)
	if err != nil && isConnectionError(err) {
		slog.WarnContext(ctx, "AMQP connection lost, reconnecting", "error", err)
		p.closeLocked()
		if err := p.connectLocked(); err != nil {
			return err
		}
		err = p.publishLocked(ctx, event.Type, body)
	}
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published event", "type", event.Type, "exchange", p.exchangeName)
	return nil
}

func (p *AMQPPublisher) publishLocked(ctx context.Context, t Type, body []byte) error {
	if p.channel == nil || p.channel.IsClosed() {
		return amqp091.ErrClosed
	}
	return p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		string(t),      // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) closeLocked() error {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
