package worker

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/pkg/mailer"
)

const sendTimeout = 15 * time.Second

// Sender delivers a rendered email. Satisfied by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// EmailConsumer drains the email queue and hands each job to the sender.
type EmailConsumer struct {
	ch     *amqp.Channel
	queue  string
	sender Sender
	logger *logrus.Logger
}

func NewEmailConsumer(ch *amqp.Channel, queue string, sender Sender, logger *logrus.Logger) *EmailConsumer {
	return &EmailConsumer{ch: ch, queue: queue, sender: sender, logger: logger}
}

// Run consumes until the channel closes or ctx is cancelled. Malformed
// messages are dropped; send failures are requeued once by the broker.
func (c *EmailConsumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(16, 0, false); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return err
	}
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	c.logger.WithField("queue", c.queue).Info("email consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *EmailConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		c.logger.WithError(err).Warn("bad email job payload, dropping")
		_ = msg.Nack(false, false)
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := c.sender.Send(sendCtx, job.To, job.Subject, job.Text, job.HTML); err != nil {
		c.logger.WithError(err).WithField("to", job.To).Warn("email send failed, requeueing")
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}
