package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/capmatchph/capital-match-api/internal/domain/payment"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

// --------------------------------------------------
// Account
// --------------------------------------------------

func (r *PaymentGormRepository) GetAccount(
	ctx context.Context,
	id uint,
) (*models.Account, error) {

	var acct models.Account
	if err := r.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// --------------------------------------------------
// Attempt
// --------------------------------------------------

func (r *PaymentGormRepository) CreateAttempt(
	ctx context.Context,
	attempt *models.PaymentAttempt,
) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *PaymentGormRepository) GetAttempt(
	ctx context.Context,
	id string,
) (*models.PaymentAttempt, error) {

	var attempt models.PaymentAttempt
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *PaymentGormRepository) ListAttemptsByAccount(
	ctx context.Context,
	accountID uint,
) ([]models.PaymentAttempt, error) {

	var attempts []models.PaymentAttempt
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// FinalizeAttempt is the conditional update guarded by the current
// status; RowsAffected tells us whether this writer won the
// PENDING -> terminal transition.
func (r *PaymentGormRepository) FinalizeAttempt(
	ctx context.Context,
	id string,
	to domain.Status,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Update("status", string(to))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Compile-time check
var _ domain.Repository = (*PaymentGormRepository)(nil)
