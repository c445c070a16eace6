package matching

import "tenant_match/internal/domain"

// ComputeMatchStatistics — грубая комбинаторная оценка: каждый активный арендатор
// считается потенциальной парой для каждого активного объекта. Score не считается.
// Отрицательные значения трактуются как 0.
func ComputeMatchStatistics(activePropertyCount, activeTenantCount int) domain.MatchStatistics {
	properties := max(activePropertyCount, 0)
	tenants := max(activeTenantCount, 0)

	return domain.MatchStatistics{
		TotalActiveProperties:     properties,
		TotalActiveTenants:        tenants,
		PotentialMatches:          properties * tenants,
		AverageMatchesPerProperty: tenants,
		AverageMatchesPerTenant:   properties,
	}
}
