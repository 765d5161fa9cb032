package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"autofilter-bot/internal/model"
)

// NoticePublisher pushes outbound user notifications onto a durable queue.
// It is the single path every premium-gate side effect goes through, so the
// delivery worker sees notices in one serialized stream.
type NoticePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewNoticePublisher(conn *amqp.Connection, queueName string) *NoticePublisher {
	return &NoticePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

// NotifyUser enqueues a notice for userID.
func (p *NoticePublisher) NotifyUser(ctx context.Context, userID int64, text string) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(model.Notice{UserID: userID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal notice payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish notice failed: %w", err)
	}
	return nil
}
