// Package service publishes domain events to RabbitMQ. Publishing is
// fire-and-forget from the caller's point of view: errors are logged
// and returned, but a registration never fails because the broker is
// down.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/5nonymous/money-for-rabbit/internal/queue"
)

// Publisher sends events to the broker. A fresh connection per
// publish keeps the type stateless; registration volume makes
// connection pooling unnecessary here.
type Publisher struct {
	URL string
	Log zerolog.Logger
}

func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{URL: url, Log: log}
}

// PublishUserRegistered puts a registration event on the durable
// user.registered queue. Messages are persistent so a broker restart
// does not lose pending confirmation mails.
func (p *Publisher) PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.UserRegisteredQueue, true, false, false, false, nil); err != nil {
		p.Log.Error().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.UserRegisteredQueue, false, false, pub); err != nil {
		p.Log.Error().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
