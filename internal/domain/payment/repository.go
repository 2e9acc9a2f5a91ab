package payment

import (
	"context"

	"github.com/capmatchph/capital-match-api/internal/models"
)

type Repository interface {
	// -------- Account --------
	GetAccount(
		ctx context.Context,
		id uint,
	) (*models.Account, error)

	// -------- Attempt (create / read) --------
	CreateAttempt(
		ctx context.Context,
		attempt *models.PaymentAttempt,
	) error

	GetAttempt(
		ctx context.Context,
		id string,
	) (*models.PaymentAttempt, error)

	ListAttemptsByAccount(
		ctx context.Context,
		accountID uint,
	) ([]models.PaymentAttempt, error)

	// -------- Attempt (state change) --------

	// FinalizeAttempt performs the compare-and-swap
	// PENDING -> terminal. It returns false when no pending row
	// matched, i.e. another writer already finalized the attempt.
	FinalizeAttempt(
		ctx context.Context,
		id string,
		to Status,
	) (bool, error)
}
