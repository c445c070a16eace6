package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tenant_match/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher — минимальный контракт брокера, реализуется rabbitmq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// publishTimeout ограничивает публикацию, если у контекста нет своего дедлайна.
const publishTimeout = 10 * time.Second

// matchEvent — тело сообщения о совпадении.
type matchEvent struct {
	domain.MatchNotification
	Type     string                      `json:"type"`
	Priority domain.NotificationPriority `json:"priority"`
}

// RabbitNotifier публикует уведомления в RabbitMQ в формате JSON.
type RabbitNotifier struct {
	log        *slog.Logger
	publisher  Publisher
	routingKey string
	now        func() time.Time
}

func NewRabbitNotifier(log *slog.Logger, publisher Publisher, routingKey string) *RabbitNotifier {
	return &RabbitNotifier{
		log:        log,
		publisher:  publisher,
		routingKey: routingKey,
		now:        time.Now,
	}
}

func (r *RabbitNotifier) Notify(ctx context.Context, n domain.MatchNotification) error {
	const op = "notify.RabbitNotifier.Notify"

	body, err := json.Marshal(matchEvent{
		MatchNotification: n,
		Type:              domain.NotificationTypeProfileMatch,
		Priority:          n.Priority(),
	})
	if err != nil {
		return fmt.Errorf("%s: failed to marshal notification: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    n.MatchID.String(),
		Timestamp:    r.now(),
	}

	publishCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	if err := r.publisher.Publish(publishCtx, r.routingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.log.Debug("match notification published",
		slog.String("op", op),
		slog.String("routing_key", r.routingKey),
		slog.String("match_id", n.MatchID.String()),
	)

	return nil
}
