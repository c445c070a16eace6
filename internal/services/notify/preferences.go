package notify

import (
	"context"
	"errors"
	"fmt"

	"tenant_match/internal/domain"

	"github.com/google/uuid"
)

// ErrOptedOut — пользователь отключил уведомления о совпадениях.
var ErrOptedOut = errors.New("user opted out of match notifications")

// PreferenceStore отдаёт настройку «уведомлять о совпадениях» пользователя.
type PreferenceStore interface {
	ProfileMatchesEnabled(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PreferenceGate пропускает уведомление дальше, только если пользователь его не отключил.
type PreferenceGate struct {
	prefs PreferenceStore
	next  Notifier
}

func NewPreferenceGate(prefs PreferenceStore, next Notifier) *PreferenceGate {
	return &PreferenceGate{prefs: prefs, next: next}
}

func (g *PreferenceGate) Notify(ctx context.Context, n domain.MatchNotification) error {
	const op = "notify.PreferenceGate.Notify"

	enabled, err := g.prefs.ProfileMatchesEnabled(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("%s: failed to load preferences: %w", op, err)
	}
	if !enabled {
		return fmt.Errorf("%s: %w", op, ErrOptedOut)
	}

	return g.next.Notify(ctx, n)
}
