package matching

import (
	"sort"
	"strings"

	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/models"
)

// ===============================
// Matching Engine
// ===============================

type Filters struct {
	Industry string
	Location string
}

// Candidate pairs a provider profile with the tier the entitlement
// ledger reports for it. Matching never reads the payment machine
// directly.
type Candidate struct {
	Profile models.ProviderProfile
	Tier    entitlement.Tier
}

// Ranker is a pure function from (candidate set, filters) to an
// ordered sequence. It is the substitution seam for a future learned
// ranking model: any implementation must preserve the ordering
// contract and have no side effects.
type Ranker func(candidates []Candidate, f Filters) []Candidate

// RuleBased filters candidates by case-insensitive substring match
// (AND-combined; absent filters impose no constraint) and ranks by
// tier descending, then last-updated descending. The sort is stable,
// so equal-key candidates keep their enumeration order.
func RuleBased(candidates []Candidate, f Filters) []Candidate {
	matched := make([]Candidate, 0, len(candidates))

	for _, cand := range candidates {
		if !matchesIndustry(cand.Profile, f.Industry) {
			continue
		}
		if !matchesLocation(cand.Profile, f.Location) {
			continue
		}
		matched = append(matched, cand)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Tier.Rank() != matched[j].Tier.Rank() {
			return matched[i].Tier.Rank() > matched[j].Tier.Rank()
		}
		return matched[i].Profile.UpdatedAt.After(matched[j].Profile.UpdatedAt)
	})

	return matched
}

func matchesIndustry(p models.ProviderProfile, industry string) bool {
	if industry == "" {
		return true
	}
	for _, svc := range p.ServiceTypes {
		if containsFold(svc, industry) {
			return true
		}
	}
	return false
}

func matchesLocation(p models.ProviderProfile, location string) bool {
	if location == "" {
		return true
	}
	if containsFold(p.Location, location) {
		return true
	}
	for _, geo := range p.GeosServed {
		if containsFold(geo, location) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Compile-time check
var _ Ranker = RuleBased
