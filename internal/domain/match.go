package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Compatibility — невзвешенные оценки по измерениям (каждая в диапазоне 0-1).
type Compatibility struct {
	Budget       float64 `json:"budget"`
	Location     float64 `json:"location"`
	Preferences  float64 `json:"preferences"`
	Requirements float64 `json:"requirements"`
}

// MatchResult — результат оценки пары арендатор/объект.
type MatchResult struct {
	TenantID      uuid.UUID     `json:"tenant_id"`
	PropertyID    uuid.UUID     `json:"property_id"`
	Score         float64       `json:"score"`
	Compatibility Compatibility `json:"compatibility"`
	Reasons       []string      `json:"reasons"`
	// RiskFactors — что снижает оценку (бюджет вне допуска, запреты на животных и курение).
	RiskFactors []string `json:"risk_factors"`
}

// matchNamespace — пространство имён для детерминированных идентификаторов матчей.
var matchNamespace = uuid.MustParse("7f1c2a9e-4b5d-4e8a-9c3f-2d6b8e0a1f47")

// MatchID возвращает стабильный идентификатор пары арендатор/объект.
func (m MatchResult) MatchID() uuid.UUID {
	return NewMatchID(m.TenantID, m.PropertyID)
}

// NewMatchID строит UUIDv5 из идентификаторов арендатора и объекта.
func NewMatchID(tenantID, propertyID uuid.UUID) uuid.UUID {
	data := make([]byte, 0, 32)
	data = append(data, tenantID[:]...)
	data = append(data, propertyID[:]...)
	return uuid.NewSHA1(matchNamespace, data)
}

// MatchDirection — кто инициировал поиск. Влияет только на оркестрацию, не на расчёт.
type MatchDirection string

const (
	DirectionTenantToProperties MatchDirection = "tenant_to_properties"
	DirectionPropertyToTenants  MatchDirection = "property_to_tenants"
)

func (d MatchDirection) String() string {
	return string(d)
}

// MatchWeights — веса измерений (сумма должна быть 1.0).
type MatchWeights struct {
	Budget       float64 `json:"budget"`       // default: 0.40
	Location     float64 `json:"location"`     // default: 0.25
	Preferences  float64 `json:"preferences"`  // default: 0.20
	Requirements float64 `json:"requirements"` // default: 0.15
}

// DefaultWeights возвращает веса по умолчанию.
func DefaultWeights() MatchWeights {
	return MatchWeights{
		Budget:       0.40,
		Location:     0.25,
		Preferences:  0.20,
		Requirements: 0.15,
	}
}

// Sum возвращает сумму весов.
func (w MatchWeights) Sum() float64 {
	return w.Budget + w.Location + w.Preferences + w.Requirements
}

// Normalize нормализует веса чтобы сумма = 1.
func (w MatchWeights) Normalize() MatchWeights {
	total := w.Sum()
	if total <= 0 {
		return DefaultWeights()
	}
	return MatchWeights{
		Budget:       w.Budget / total,
		Location:     w.Location / total,
		Preferences:  w.Preferences / total,
		Requirements: w.Requirements / total,
	}
}

// weightsTolerance — допуск при проверке суммы весов.
const weightsTolerance = 1e-9

// Validate проверяет, что веса неотрицательны и в сумме дают 1.
func (w MatchWeights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"budget", w.Budget},
		{"location", w.Location},
		{"preferences", w.Preferences},
		{"requirements", w.Requirements},
	}
	for _, n := range named {
		if math.IsNaN(n.value) || n.value < 0 {
			return fmt.Errorf("%w: %s weight %v must be a non-negative number", ErrInvalidConfig, n.name, n.value)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightsTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, must sum to 1.0", ErrInvalidConfig, w.Sum())
	}
	return nil
}

// Apply считает итоговый взвешенный score.
func (w MatchWeights) Apply(c Compatibility) float64 {
	return c.Budget*w.Budget +
		c.Location*w.Location +
		c.Preferences*w.Preferences +
		c.Requirements*w.Requirements
}

// DefaultMinScore — порог включения в выдачу (результаты с score <= порога отбрасываются).
const DefaultMinScore = 0.3

// MatchConfig — единая конфигурация скорера.
type MatchConfig struct {
	Weights  MatchWeights
	MinScore float64
}

// DefaultMatchConfig возвращает конфигурацию по умолчанию.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Weights:  DefaultWeights(),
		MinScore: DefaultMinScore,
	}
}

// Validate проверяет веса и порог.
func (c MatchConfig) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.MinScore) || c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: min score %v must be within [0, 1]", ErrInvalidConfig, c.MinScore)
	}
	return nil
}

// MatchStatistics — комбинаторная оценка числа потенциальных пар.
// Это не количество матчей выше порога: score здесь не считается.
type MatchStatistics struct {
	TotalActiveProperties     int `json:"total_active_properties"`
	TotalActiveTenants        int `json:"total_active_tenants"`
	PotentialMatches          int `json:"potential_matches"`
	AverageMatchesPerProperty int `json:"average_matches_per_property"`
	AverageMatchesPerTenant   int `json:"average_matches_per_tenant"`
}
