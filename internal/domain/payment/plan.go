package payment

import (
	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/httperr"
)

// ===============================
// Plan catalog
// ===============================

// Subscription prices in minor units. The attempt's tier is fixed at
// initiate time from this catalog, so completion never guesses.
const (
	BasicPriceMinor   int64 = 50000
	PremiumPriceMinor int64 = 150000
)

// PlanForAmount resolves the tier an amount pays for.
func PlanForAmount(amountMinor int64) (entitlement.Tier, bool) {
	switch amountMinor {
	case BasicPriceMinor:
		return entitlement.TierBasic, true
	case PremiumPriceMinor:
		return entitlement.TierPremium, true
	}
	return entitlement.TierNone, false
}

// ValidateInitiate checks the checkout input before any state is
// created.
func ValidateInitiate(amountMinor int64, currency string) (entitlement.Tier, error) {
	if amountMinor <= 0 {
		return entitlement.TierNone, httperr.ValidationErr("invalid_amount")
	}
	if len(currency) != 3 {
		return entitlement.TierNone, httperr.ValidationErr("invalid_currency")
	}

	tier, ok := PlanForAmount(amountMinor)
	if !ok {
		return entitlement.TierNone, httperr.ValidationErr("unknown_plan_amount")
	}
	return tier, nil
}
