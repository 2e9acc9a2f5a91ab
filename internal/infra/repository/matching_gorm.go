package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/capmatchph/capital-match-api/internal/domain/matching"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type MatchingGormRepository struct {
	db *gorm.DB
}

func NewMatchingGormRepository(db *gorm.DB) *MatchingGormRepository {
	return &MatchingGormRepository{db: db}
}

func (r *MatchingGormRepository) GetAccount(
	ctx context.Context,
	id uint,
) (*models.Account, error) {

	var acct models.Account
	if err := r.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// ListActiveProviders joins on the owning account's active flag. The
// id ordering keeps the candidate enumeration stable so the ranker's
// stable sort is reproducible.
func (r *MatchingGormRepository) ListActiveProviders(
	ctx context.Context,
) ([]models.ProviderProfile, error) {

	var providers []models.ProviderProfile
	if err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = provider_profiles.account_id").
		Where("accounts.active = ?", true).
		Order("provider_profiles.id ASC").
		Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// Compile-time check
var _ domain.Repository = (*MatchingGormRepository)(nil)
