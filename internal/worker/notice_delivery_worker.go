package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"autofilter-bot/internal/model"
)

// NoticeSender pushes a plain text message to a user's chat.
type NoticeSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
}

// NoticeDeliveryWorker drains the user-notice queue and hands each notice to
// the chat platform. Delivery is best effort: a notice that cannot be sent
// (blocked bot, deleted account, malformed body) is logged and dropped, never
// requeued.
type NoticeDeliveryWorker struct {
	conn      *amqp.Connection
	sender    NoticeSender
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewNoticeDeliveryWorker(conn *amqp.Connection, sender NoticeSender, queueName string, logger *zap.Logger) *NoticeDeliveryWorker {
	return &NoticeDeliveryWorker{
		conn:      conn,
		sender:    sender,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *NoticeDeliveryWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var notice model.Notice
				if err := json.Unmarshal(d.Body, &notice); err != nil {
					w.logger.Warn("decode notice failed", zap.Error(err))
					_ = d.Ack(false)
					continue
				}

				if _, err := w.sender.SendMessage(workerCtx, notice.UserID, notice.Text); err != nil {
					w.logger.Warn("deliver notice failed",
						zap.Int64("user_id", notice.UserID), zap.Error(err))
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *NoticeDeliveryWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
