package rabbitmq

import (
	"context"
	"time"

	"collector-service/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends outbox payloads to a topic exchange. Publish is synchronous;
// an error return means the broker did not take the message.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	exchange := cfg.ExchangeName
	if exchange == "" {
		exchange = "collector_events"
	}

	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &Publisher{ch: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	return p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
