package matching

import (
	"fmt"
	"math"
	"slices"

	"tenant_match/internal/domain"

	"github.com/google/uuid"
)

// SkippedCandidate — кандидат, которого не удалось оценить.
type SkippedCandidate struct {
	ID  uuid.UUID
	Err error
}

// Ranking — отсортированная выдача и пропущенные кандидаты.
type Ranking struct {
	Matches []domain.MatchResult
	Skipped []SkippedCandidate
}

// RankProperties оценивает объекты для арендатора: отбрасывает score <= minScore,
// стабильно сортирует по убыванию score и обрезает до limit (limit <= 0 — без обрезки).
func (s *Scorer) RankProperties(
	tenant domain.TenantPreference,
	candidates []domain.PropertyListing,
	minScore float64,
	limit int,
) (Ranking, error) {
	const op = "matching.Scorer.RankProperties"

	if err := checkRankArgs(minScore); err != nil {
		return Ranking{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := tenant.Validate(); err != nil {
		return Ranking{}, fmt.Errorf("%s: %w", op, err)
	}

	return rank(candidates,
		func(p domain.PropertyListing) uuid.UUID { return p.ID },
		func(p domain.PropertyListing) (domain.MatchResult, error) { return s.Score(tenant, p) },
		minScore, limit,
	), nil
}

// RankTenants — зеркальный поиск арендаторов для объекта. Формулы и веса те же.
func (s *Scorer) RankTenants(
	property domain.PropertyListing,
	candidates []domain.TenantPreference,
	minScore float64,
	limit int,
) (Ranking, error) {
	const op = "matching.Scorer.RankTenants"

	if err := checkRankArgs(minScore); err != nil {
		return Ranking{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := property.Validate(); err != nil {
		return Ranking{}, fmt.Errorf("%s: %w", op, err)
	}

	return rank(candidates,
		func(t domain.TenantPreference) uuid.UUID { return t.ID },
		func(t domain.TenantPreference) (domain.MatchResult, error) { return s.Score(t, property) },
		minScore, limit,
	), nil
}

func checkRankArgs(minScore float64) error {
	if math.IsNaN(minScore) {
		return fmt.Errorf("%w: min score must be a number", domain.ErrInvalidInput)
	}
	return nil
}

func rank[T any](
	candidates []T,
	idOf func(T) uuid.UUID,
	score func(T) (domain.MatchResult, error),
	minScore float64,
	limit int,
) Ranking {
	out := Ranking{Matches: make([]domain.MatchResult, 0, len(candidates))}

	for _, c := range candidates {
		res, err := score(c)
		if err != nil {
			out.Skipped = append(out.Skipped, SkippedCandidate{ID: idOf(c), Err: err})
			continue
		}
		if res.Score <= minScore {
			continue
		}
		out.Matches = append(out.Matches, res)
	}

	slices.SortStableFunc(out.Matches, func(a, b domain.MatchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if limit > 0 && len(out.Matches) > limit {
		out.Matches = out.Matches[:limit]
	}
	return out
}
