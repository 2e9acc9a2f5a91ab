package matching

import (
	"context"

	domain "github.com/capmatchph/capital-match-api/internal/domain/matching"
	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type FindMatches struct {
	repo   domain.Repository
	ledger *entitlement.Ledger
	rank   domain.Ranker
}

func NewFindMatches(
	repo domain.Repository,
	ledger *entitlement.Ledger,
	rank domain.Ranker,
) *FindMatches {
	return &FindMatches{
		repo:   repo,
		ledger: ledger,
		rank:   rank,
	}
}

// Execute assembles the candidate set (active providers with tiers
// read through the ledger) and hands it to the ranking function.
// Re-running with identical inputs over unchanged data reproduces the
// same ordered sequence.
func (uc *FindMatches) Execute(
	ctx context.Context,
	requesterID uint,
	filters domain.Filters,
) ([]domain.Candidate, error) {

	acct, err := uc.repo.GetAccount(ctx, requesterID)
	if err != nil {
		return nil, httperr.NotFoundErr("account_not_found")
	}
	if acct.Role != models.RoleSeeker && acct.Role != models.RoleAdmin {
		return nil, httperr.ForbiddenErr("matching_forbidden")
	}

	providers, err := uc.repo.ListActiveProviders(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(providers))
	for i := range providers {
		ids = append(ids, providers[i].AccountID)
	}

	tiers, err := uc.ledger.TiersFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(providers))
	for i := range providers {
		candidates = append(candidates, domain.Candidate{
			Profile: providers[i],
			Tier:    tiers[providers[i].AccountID],
		})
	}

	return uc.rank(candidates, filters), nil
}
