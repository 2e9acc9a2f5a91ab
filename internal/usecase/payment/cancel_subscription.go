package payment

import (
	"context"

	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type CancelSubscription struct {
	ledger *entitlement.Ledger
}

func NewCancelSubscription(ledger *entitlement.Ledger) *CancelSubscription {
	return &CancelSubscription{ledger: ledger}
}

// Execute flags the subscription to lapse at period end. The tier is
// not downgraded here; expiry is evaluated lazily on read.
func (uc *CancelSubscription) Execute(
	ctx context.Context,
	accountID uint,
) (*models.Subscription, error) {
	return uc.ledger.CancelAtPeriodEnd(ctx, accountID)
}
