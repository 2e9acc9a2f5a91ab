package matching

import (
	"context"

	"github.com/capmatchph/capital-match-api/internal/models"
)

type Repository interface {
	// -------- Requester --------
	GetAccount(
		ctx context.Context,
		id uint,
	) (*models.Account, error)

	// -------- Candidates --------

	// ListActiveProviders returns provider profiles whose owning
	// account is active, in a stable enumeration order.
	ListActiveProviders(
		ctx context.Context,
	) ([]models.ProviderProfile, error)
}
