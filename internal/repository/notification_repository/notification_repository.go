package notification_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenant_match/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, log: log}
}

// CreateMatchNotification — сохраняет уведомление о совпадении в ленту пользователя.
// Повторное уведомление по той же паре для того же пользователя игнорируется.
func (r *NotificationRepository) CreateMatchNotification(ctx context.Context, n domain.MatchNotification) (uuid.UUID, error) {
	const op = "NotificationRepository.CreateMatchNotification"

	query := `
		INSERT INTO notifications (
			user_id, type, title, message,
			related_match_id, priority
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, related_match_id) DO NOTHING
		RETURNING notification_id
	`

	var id uuid.UUID
	rows, err := r.db.Query(ctx, query,
		n.UserID,
		domain.NotificationTypeProfileMatch,
		n.Title(),
		n.Message(),
		n.MatchID,
		string(n.Priority()),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if id == uuid.Nil {
		r.log.Debug("match notification already exists",
			slog.String("user_id", n.UserID.String()),
			slog.String("match_id", n.MatchID.String()),
		)
	}

	return id, nil
}

// ProfileMatchesEnabled — включены ли у пользователя уведомления о совпадениях.
// Без сохранённых настроек уведомления включены.
func (r *NotificationRepository) ProfileMatchesEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "NotificationRepository.ProfileMatchesEnabled"

	var enabled bool
	err := r.db.QueryRow(ctx,
		`SELECT profile_matches FROM notification_preferences WHERE user_id = $1`,
		userID,
	).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return enabled, nil
}
