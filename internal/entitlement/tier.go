package entitlement

// ===============================
// Subscription Tier
// ===============================

type Tier string

const (
	TierNone    Tier = "NONE"
	TierBasic   Tier = "BASIC"
	TierPremium Tier = "PREMIUM"
)

// Rank orders tiers for the matching engine: PREMIUM > BASIC > NONE.
func (t Tier) Rank() int {
	switch t {
	case TierPremium:
		return 2
	case TierBasic:
		return 1
	}
	return 0
}

func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierBasic:
		return TierBasic
	case TierPremium:
		return TierPremium
	}
	return TierNone
}
