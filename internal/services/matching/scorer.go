package matching

import (
	"fmt"

	"tenant_match/internal/domain"
)

// Коэффициенты допусков по бюджету.
const (
	budgetOverTolerance  = 1.1 // до 10% выше максимума
	budgetUnderTolerance = 0.9 // до 10% ниже минимума
)

// Оценки по измерениям.
const (
	budgetInRange      = 1.0
	budgetSlightlyOver = 0.7
	budgetSlightlyLow  = 0.5

	locationCity     = 1.0
	locationProvince = 0.6

	preferenceExact      = 1.0
	preferenceOffByOne   = 0.7
	preferencesNeutral   = 0.5
	requirementsBaseline = 1.0
	petsPenalty          = 0.5
	smokingPenalty       = 0.3
)

// Scorer считает совместимость арендатора и объекта.
// Не имеет изменяемого состояния, безопасен для конкурентного использования.
type Scorer struct {
	cfg domain.MatchConfig
}

// NewScorer создаёт скорер с проверенной конфигурацией.
func NewScorer(cfg domain.MatchConfig) (*Scorer, error) {
	const op = "matching.NewScorer"

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Scorer{cfg: cfg}, nil
}

// Config возвращает конфигурацию скорера.
func (s *Scorer) Config() domain.MatchConfig {
	return s.cfg
}

var defaultScorer = &Scorer{cfg: domain.DefaultMatchConfig()}

// Score считает совместимость с весами по умолчанию.
func Score(tenant domain.TenantPreference, property domain.PropertyListing) (domain.MatchResult, error) {
	return defaultScorer.Score(tenant, property)
}

// Score считает совместимость пары. Оба направления поиска используют именно этот метод.
func (s *Scorer) Score(tenant domain.TenantPreference, property domain.PropertyListing) (domain.MatchResult, error) {
	const op = "matching.Scorer.Score"

	if err := tenant.Validate(); err != nil {
		return domain.MatchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := property.Validate(); err != nil {
		return domain.MatchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var ex explanation
	compat := domain.Compatibility{
		Budget:       budgetScore(tenant, property, &ex),
		Location:     locationScore(tenant, property, &ex),
		Preferences:  preferencesScore(tenant, property, &ex),
		Requirements: requirementsScore(tenant, property, &ex),
	}

	return domain.MatchResult{
		TenantID:      tenant.ID,
		PropertyID:    property.ID,
		Score:         s.cfg.Weights.Apply(compat),
		Compatibility: compat,
		Reasons:       ex.reasons.strings(),
		RiskFactors:   ex.risks.strings(),
	}, nil
}

func budgetScore(t domain.TenantPreference, p domain.PropertyListing, ex *explanation) float64 {
	rent, lo, hi := p.RentAmount, t.MinBudget, t.MaxBudget

	switch {
	case rent >= lo && rent <= hi:
		ex.reasons.add(ReasonWithinBudget)
		return budgetInRange
	case rent > hi && rent <= hi*budgetOverTolerance:
		ex.reasons.add(ReasonSlightlyAboveBudget)
		return budgetSlightlyOver
	case rent < lo && rent >= lo*budgetUnderTolerance:
		ex.reasons.add(ReasonCloseToBudget)
		return budgetSlightlyLow
	case rent > hi:
		ex.risks.add(RiskAboveBudget)
		return 0
	default:
		ex.risks.add(RiskBelowBudget)
		return 0
	}
}

func locationScore(t domain.TenantPreference, p domain.PropertyListing, ex *explanation) float64 {
	if t.PreferredCity != nil && domain.LocationsMatch(*t.PreferredCity, p.City) {
		ex.reasons.add(ReasonPreferredCity)
		return locationCity
	}
	if t.PreferredProvince != nil && domain.LocationsMatch(*t.PreferredProvince, p.Province) {
		ex.reasons.add(ReasonPreferredProvince)
		return locationProvince
	}
	return 0
}

func preferencesScore(t domain.TenantPreference, p domain.PropertyListing, ex *explanation) float64 {
	var sum float64
	var evaluated int

	if t.PreferredBedrooms != nil && p.Bedrooms != nil {
		evaluated++
		want, have := *t.PreferredBedrooms, *p.Bedrooms
		switch {
		case want == have:
			sum += preferenceExact
			ex.reasons.add(BedroomsReason(have))
		case want-have == 1 || have-want == 1:
			sum += preferenceOffByOne
		}
	}

	if t.PreferredPropertyType != nil && p.PropertyType != nil {
		evaluated++
		if *t.PreferredPropertyType == *p.PropertyType {
			sum += preferenceExact
			ex.reasons.add(PropertyTypeReason(*p.PropertyType))
		}
	}

	if t.FurnishedPreference != nil && p.Furnished != nil {
		evaluated++
		if *t.FurnishedPreference == *p.Furnished {
			sum += preferenceExact
			if *p.Furnished {
				ex.reasons.add(ReasonFurnished)
			}
		}
	}

	if evaluated == 0 {
		return preferencesNeutral
	}
	return sum / float64(evaluated)
}

func requirementsScore(t domain.TenantPreference, p domain.PropertyListing, ex *explanation) float64 {
	score := requirementsBaseline

	if t.HasPets {
		if p.PetsAllowed {
			ex.reasons.add(ReasonPetsAllowed)
		} else {
			score -= petsPenalty
			ex.risks.add(RiskPetsNotAllowed)
		}
	}

	if t.Smokes {
		if p.SmokingAllowed {
			ex.reasons.add(ReasonSmokingAllowed)
		} else {
			score -= smokingPenalty
			ex.risks.add(RiskSmokingNotAllowed)
		}
	}

	return max(score, 0)
}
