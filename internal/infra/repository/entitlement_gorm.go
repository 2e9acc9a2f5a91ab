package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type EntitlementGormRepository struct {
	db *gorm.DB
}

func NewEntitlementGormRepository(db *gorm.DB) *EntitlementGormRepository {
	return &EntitlementGormRepository{db: db}
}

// --------------------------------------------------
// Subscription
// --------------------------------------------------

func (r *EntitlementGormRepository) GetSubscription(
	ctx context.Context,
	accountID uint,
) (*models.Subscription, error) {

	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *EntitlementGormRepository) ListSubscriptions(
	ctx context.Context,
	accountIDs []uint,
) ([]models.Subscription, error) {

	if len(accountIDs) == 0 {
		return nil, nil
	}

	var subs []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("account_id IN ?", accountIDs).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *EntitlementGormRepository) SaveSubscription(
	ctx context.Context,
	sub *models.Subscription,
) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// --------------------------------------------------
// Grant (idempotency key)
// --------------------------------------------------

// InsertGrant relies on the unique (account_id, attempt_id) index, not
// on a read-then-write check, so duplicate webhook deliveries race
// safely.
func (r *EntitlementGormRepository) InsertGrant(
	ctx context.Context,
	grant *models.EntitlementGrant,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(grant)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --------------------------------------------------
// Provider read model
// --------------------------------------------------

func (r *EntitlementGormRepository) SetProviderTier(
	ctx context.Context,
	accountID uint,
	tier entitlement.Tier,
) error {
	return r.db.WithContext(ctx).
		Model(&models.ProviderProfile{}).
		Where("account_id = ?", accountID).
		Update("subscription_tier", string(tier)).Error
}

// Compile-time check
var _ entitlement.Repository = (*EntitlementGormRepository)(nil)
