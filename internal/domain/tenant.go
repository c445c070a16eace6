package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// TenantPreference — жилищные предпочтения арендатора.
// Nil-поля означают «предпочтение не указано» и не участвуют в оценке.
type TenantPreference struct {
	ID     uuid.UUID
	UserID uuid.UUID

	MinBudget float64
	MaxBudget float64

	PreferredCity         *string
	PreferredProvince     *string
	PreferredBedrooms     *int32
	PreferredPropertyType *string
	FurnishedPreference   *bool

	HasPets bool
	Smokes  bool

	// IsLookingForPlace — арендатор попадает в пул кандидатов для объектов.
	IsLookingForPlace bool
}

// Validate проверяет бюджет арендатора.
func (t TenantPreference) Validate() error {
	if !isFinite(t.MinBudget) || !isFinite(t.MaxBudget) {
		return fmt.Errorf("%w: tenant %s: budget must be a finite number", ErrInvalidInput, t.ID)
	}
	if t.MinBudget < 0 || t.MaxBudget < 0 {
		return fmt.Errorf("%w: tenant %s: budget must not be negative (min=%.2f, max=%.2f)",
			ErrInvalidInput, t.ID, t.MinBudget, t.MaxBudget)
	}
	if t.MinBudget > t.MaxBudget {
		return fmt.Errorf("%w: tenant %s: min budget %.2f exceeds max budget %.2f",
			ErrInvalidInput, t.ID, t.MinBudget, t.MaxBudget)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
