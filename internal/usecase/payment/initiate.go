package payment

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/capmatchph/capital-match-api/internal/audit"
	domain "github.com/capmatchph/capital-match-api/internal/domain/payment"
	"github.com/capmatchph/capital-match-api/internal/gateway"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type InitiatePayment struct {
	repo     domain.Repository
	gw       gateway.Gateway
	recorder *audit.Recorder
}

func NewInitiatePayment(
	repo domain.Repository,
	gw gateway.Gateway,
	recorder *audit.Recorder,
) *InitiatePayment {
	return &InitiatePayment{
		repo:     repo,
		gw:       gw,
		recorder: recorder,
	}
}

// Execute creates a PENDING attempt with a fresh id and a checkout
// session for it. Validation rejects before any state is created.
func (uc *InitiatePayment) Execute(
	ctx context.Context,
	accountID uint,
	amountMinor int64,
	currency string,
	description string,
) (*models.PaymentAttempt, *gateway.Session, error) {

	acct, err := uc.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, nil, httperr.NotFoundErr("account_not_found")
	}
	if !acct.Active {
		return nil, nil, httperr.ForbiddenErr("account_inactive")
	}

	tier, err := domain.ValidateInitiate(amountMinor, currency)
	if err != nil {
		return nil, nil, err
	}

	attempt := &models.PaymentAttempt{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		AmountMinor: amountMinor,
		Currency:    currency,
		Status:      string(domain.InitialStatus()),
		Description: description,
		PlanTier:    string(tier),
	}

	session, err := uc.gw.CreateCheckout(ctx, attempt)
	if err != nil {
		return nil, nil, err
	}
	attempt.GatewayRef = session.Reference

	if err := uc.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, nil, err
	}

	target := &audit.Target{Type: "payment_attempt", ID: attempt.ID}
	if _, err := uc.recorder.Record(ctx, &accountID, audit.ActionPaymentInitiated, target, map[string]any{
		"amount_minor": attempt.AmountMinor,
		"currency":     attempt.Currency,
		"plan_tier":    attempt.PlanTier,
	}, nil); err != nil {
		log.Printf("audit write failed for %s: %v", audit.ActionPaymentInitiated, err)
	}

	return attempt, session, nil
}
