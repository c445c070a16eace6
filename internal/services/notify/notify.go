// Package notify доставляет уведомления о совпадениях: в ленту пользователя
// (Postgres) и во внешние системы через брокер сообщений.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenant_match/internal/domain"

	"github.com/google/uuid"
)

// Notifier доставляет одно уведомление.
type Notifier interface {
	Notify(ctx context.Context, n domain.MatchNotification) error
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(ctx context.Context, n domain.MatchNotification) error

func (f NotifierFunc) Notify(ctx context.Context, n domain.MatchNotification) error {
	return f(ctx, n)
}

// Multi рассылает уведомление всем получателям. Ошибка одного не мешает остальным.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n domain.MatchNotification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop ничего не делает. Используется при выключенных уведомлениях.
type Nop struct{}

func (Nop) Notify(context.Context, domain.MatchNotification) error { return nil }

// NotificationStore сохраняет уведомления в ленту пользователя.
type NotificationStore interface {
	CreateMatchNotification(ctx context.Context, n domain.MatchNotification) (uuid.UUID, error)
}

// StoreNotifier пишет уведомления в хранилище.
type StoreNotifier struct {
	log   *slog.Logger
	store NotificationStore
}

func NewStoreNotifier(log *slog.Logger, store NotificationStore) *StoreNotifier {
	return &StoreNotifier{log: log, store: store}
}

func (s *StoreNotifier) Notify(ctx context.Context, n domain.MatchNotification) error {
	const op = "notify.StoreNotifier.Notify"

	id, err := s.store.CreateMatchNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if id == uuid.Nil {
		s.log.Debug("match notification already stored",
			slog.String("op", op),
			slog.String("user_id", n.UserID.String()),
			slog.String("match_id", n.MatchID.String()),
		)
		return nil
	}

	s.log.Debug("match notification stored",
		slog.String("op", op),
		slog.String("notification_id", id.String()),
		slog.String("user_id", n.UserID.String()),
		slog.String("priority", string(n.Priority())),
	)

	return nil
}
