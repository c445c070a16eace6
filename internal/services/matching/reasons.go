package matching

import (
	"fmt"

	"github.com/samber/lo"
)

// Тексты объяснений. Порядок появления в MatchResult.Reasons:
// бюджет -> локация -> предпочтения -> требования.
const (
	ReasonWithinBudget        = "Within budget"
	ReasonSlightlyAboveBudget = "Slightly above budget"
	ReasonCloseToBudget       = "Close to budget"
	ReasonPreferredCity       = "Preferred city"
	ReasonPreferredProvince   = "Preferred province"
	ReasonFurnished           = "Furnished"
	ReasonPetsAllowed         = "Pets allowed"
	ReasonSmokingAllowed      = "Smoking allowed"
)

// Факторы риска. Порядок появления в MatchResult.RiskFactors тот же, что у объяснений.
const (
	RiskAboveBudget       = "Above budget"
	RiskBelowBudget       = "Below budget"
	RiskPetsNotAllowed    = "Pets not allowed"
	RiskSmokingNotAllowed = "Smoking not allowed"
)

// BedroomsReason — объяснение для точного совпадения по числу спален.
func BedroomsReason(bedrooms int32) string {
	if bedrooms == 1 {
		return "1 bedroom"
	}
	return fmt.Sprintf("%d bedrooms", bedrooms)
}

// PropertyTypeReason — объяснение для совпадения типа жилья.
func PropertyTypeReason(propertyType string) string {
	return "Property type: " + propertyType
}

// reasonList — упорядоченный список объяснений без дубликатов (только добавление).
type reasonList []string

func (r *reasonList) add(reason string) {
	if reason == "" || lo.Contains(*r, reason) {
		return
	}
	*r = append(*r, reason)
}

func (r reasonList) strings() []string {
	if len(r) == 0 {
		return []string{}
	}
	out := make([]string, len(r))
	copy(out, r)
	return out
}

// explanation собирает объяснения и факторы риска в порядке измерений.
type explanation struct {
	reasons reasonList
	risks   reasonList
}
