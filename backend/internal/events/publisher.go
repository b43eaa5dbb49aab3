// Package events publishes pipeline events to an AMQP topic exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/filemsg/shared/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const producer = "filemsg"

type Meta struct {
	Id       string    `json:"id"`
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Producer string    `json:"producer"`
}

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
	Close() error
}

var ErrNotConfirmed = errors.New("publish not confirmed by broker")

type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// New connects to the broker and declares a durable topic exchange.
func New(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	logger.Log.Info("connected to amqp broker", "component", "events", "exchange", exchange)
	return &AMQPPublisher{conn: conn, exchange: exchange}, nil
}

// Publish sends env and waits for the broker confirmation.
func (p *AMQPPublisher) Publish(ctx context.Context, key string, env Envelope) error {
	if env.Meta.Id == "" {
		env.Meta.Id = uuid.NewString()
	}
	if env.Meta.Time.IsZero() {
		env.Meta.Time = time.Now().UTC()
	}
	if env.Meta.Producer == "" {
		env.Meta.Producer = producer
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("enable confirms: %w", err)
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.Meta.Id,
		Type:         env.Meta.Type,
		Timestamp:    env.Meta.Time,
		AppId:        env.Meta.Producer,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait confirm %s: %w", key, err)
	}
	if !acked {
		return ErrNotConfirmed
	}

	logger.Log.Debug("published", "component", "events", "key", key, "exchange", p.exchange, "id", env.Meta.Id)
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}
