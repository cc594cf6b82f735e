package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/5nonymous/money-for-rabbit/internal/config"
)

// StartMailConsumer connects to RabbitMQ, declares the registration
// queue and delivers one confirmation mail per event. It runs a
// reconnect loop with exponential backoff and never returns under
// normal operation; failed deliveries are rejected without requeue so
// a poisoned message cannot wedge the consumer.
func StartMailConsumer(cfg config.Config, log zerolog.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("mail consumer: broker dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, cfg, log); err != nil {
			log.Warn().Err(err).Msg("mail consumer: consume loop ended, reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, cfg config.Config, log zerolog.Logger) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(UserRegisteredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleRegistered(d.Body, cfg, log); err != nil {
			log.Error().Err(err).Msg("mail consumer: delivery failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleRegistered(body []byte, cfg config.Config, log zerolog.Logger) error {
	var ev UserRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if cfg.SMTPHost == "" {
		// No mail server configured (dev/test): record the link so the
		// flow stays verifiable end to end.
		log.Info().
			Uint64("user_id", ev.UserID).
			Str("email", ev.Email).
			Str("confirm_url", ev.ConfirmURL).
			Msg("confirmation mail skipped, SMTP not configured")
		return nil
	}
	return sendConfirmationMail(cfg, ev)
}

func sendConfirmationMail(cfg config.Config, ev UserRegisteredEvent) error {
	addr := cfg.SMTPHost + ":" + cfg.SMTPPort
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)

	subject := fmt.Sprintf("[Money For Rabbit] %s, please confirm your email", ev.Username)
	msg := []byte("From: " + cfg.MailFrom + "\r\n" +
		"To: " + ev.Email + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		"Open the link below to finish signing up:\r\n" + ev.ConfirmURL + "\r\n")

	return smtp.SendMail(addr, auth, cfg.MailFrom, []string{ev.Email}, msg)
}
