package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// NotificationTypeProfileMatch — тип уведомления о новом совпадении.
const NotificationTypeProfileMatch = "profile_match"

// NotificationPriority — приоритет уведомления.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// MatchNotification — уведомление пользователя о совпадении.
type MatchNotification struct {
	UserID     uuid.UUID      `json:"user_id"`
	MatchID    uuid.UUID      `json:"match_id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	PropertyID uuid.UUID      `json:"property_id"`
	Score      float64        `json:"score"`
	Direction  MatchDirection `json:"direction"`
}

// Priority выбирает приоритет по величине score.
func (n MatchNotification) Priority() NotificationPriority {
	switch {
	case n.Score >= 0.8:
		return NotificationPriorityHigh
	case n.Score >= 0.6:
		return NotificationPriorityMedium
	default:
		return NotificationPriorityLow
	}
}

// Title — заголовок уведомления для ленты пользователя.
func (n MatchNotification) Title() string {
	if n.Direction == DirectionPropertyToTenants {
		return "New tenant match"
	}
	return "New property match"
}

// Message — текст уведомления с процентом совместимости.
func (n MatchNotification) Message() string {
	percent := int(math.Round(n.Score * 100))
	if n.Direction == DirectionPropertyToTenants {
		return fmt.Sprintf("A tenant matches your property for %d%%.", percent)
	}
	return fmt.Sprintf("A property matches your profile for %d%%.", percent)
}
