package depreciation

import (
	"time"

	"github.com/google/uuid"
)

// EligibilityCriteria selects the assets a run should depreciate. It is built
// from a schedule or for a manual run and resolved by AssetRepository.FindEligible.
type EligibilityCriteria struct {
	TenantID          uuid.UUID
	RunDate           time.Time
	IncludeCategories []uuid.UUID
	ExcludeCategories []uuid.UUID
}

// CriteriaForSchedule builds the criteria for a scheduled run
func CriteriaForSchedule(s *Schedule, runDate time.Time) EligibilityCriteria {
	return EligibilityCriteria{
		TenantID:          s.TenantID,
		RunDate:           runDate,
		IncludeCategories: s.IncludeCategories,
		ExcludeCategories: s.ExcludeCategories,
	}
}

// ManualCriteria builds the criteria for an ad-hoc run across all categories
func ManualCriteria(tenantID uuid.UUID, runDate time.Time) EligibilityCriteria {
	return EligibilityCriteria{
		TenantID: tenantID,
		RunDate:  runDate,
	}
}

// Matches reports whether an asset satisfies the criteria
func (c EligibilityCriteria) Matches(a *Asset) bool {
	if a.TenantID != c.TenantID {
		return false
	}
	if !a.IsDue(c.RunDate) {
		return false
	}
	if len(c.IncludeCategories) > 0 && !contains(c.IncludeCategories, a.CategoryID) {
		return false
	}
	return !contains(c.ExcludeCategories, a.CategoryID)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
