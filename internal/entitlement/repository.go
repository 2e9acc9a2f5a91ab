package entitlement

import (
	"context"

	"github.com/capmatchph/capital-match-api/internal/models"
)

type Repository interface {
	// GetSubscription returns (nil, nil) when the account has no
	// subscription row yet.
	GetSubscription(
		ctx context.Context,
		accountID uint,
	) (*models.Subscription, error)

	ListSubscriptions(
		ctx context.Context,
		accountIDs []uint,
	) ([]models.Subscription, error)

	SaveSubscription(
		ctx context.Context,
		sub *models.Subscription,
	) error

	// InsertGrant inserts the dedup row for an applied attempt. It
	// returns false without error when the grant already exists
	// (ON CONFLICT DO NOTHING semantics), which is what makes
	// ApplyPaymentSuccess race-safe under duplicate success
	// notifications.
	InsertGrant(
		ctx context.Context,
		grant *models.EntitlementGrant,
	) (bool, error)

	// SetProviderTier refreshes the denormalized tier on the
	// provider profile read model.
	SetProviderTier(
		ctx context.Context,
		accountID uint,
		tier Tier,
	) error
}
