package payment

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/capmatchph/capital-match-api/internal/audit"
	domain "github.com/capmatchph/capital-match-api/internal/domain/payment"
	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/models"
	"github.com/capmatchph/capital-match-api/internal/notify"
)

type CompletePayment struct {
	repo     domain.Repository
	ledger   *entitlement.Ledger
	recorder *audit.Recorder
	notifier notify.Notifier
}

func NewCompletePayment(
	repo domain.Repository,
	ledger *entitlement.Ledger,
	recorder *audit.Recorder,
	notifier notify.Notifier,
) *CompletePayment {
	return &CompletePayment{
		repo:     repo,
		ledger:   ledger,
		recorder: recorder,
		notifier: notifier,
	}
}

// Execute drives PENDING -> SUCCEEDED|FAILED. On success the ledger
// is applied before the attempt is finalized: a ledger failure leaves
// the attempt PENDING and retryable, with a reconciliation entry in
// the audit log instead of a success entry. Concurrent completions
// serialize on the status compare-and-swap; the loser observes
// InvalidTransition.
func (uc *CompletePayment) Execute(
	ctx context.Context,
	attemptID string,
	outcome domain.Status,
) (*models.PaymentAttempt, error) {

	attempt, err := uc.repo.GetAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("attempt_not_found")
		}
		return nil, err
	}

	if err := domain.CanComplete(domain.Status(attempt.Status), outcome); err != nil {
		return nil, err
	}

	if outcome == domain.StatusSucceeded {
		if _, err := uc.ledger.ApplyPaymentSuccess(ctx, attempt.AccountID, attempt); err != nil {
			uc.record(ctx, nil, audit.ActionPaymentReconFailed, attempt, map[string]any{
				"error":     err.Error(),
				"plan_tier": attempt.PlanTier,
			})
			return nil, httperr.ReconciliationErr("entitlement_not_applied")
		}
	}

	won, err := uc.repo.FinalizeAttempt(ctx, attempt.ID, outcome)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, httperr.InvalidTransitionErr("attempt_already_terminal")
	}
	attempt.Status = string(outcome)

	action := audit.ActionPaymentFailed
	if outcome == domain.StatusSucceeded {
		action = audit.ActionPaymentSucceeded
	}
	uc.record(ctx, &attempt.AccountID, action, attempt, map[string]any{
		"amount_minor": attempt.AmountMinor,
		"currency":     attempt.Currency,
		"plan_tier":    attempt.PlanTier,
	})

	if outcome == domain.StatusSucceeded {
		if err := uc.notifier.PaymentSucceeded(ctx, attempt.AccountID, attempt); err != nil {
			log.Printf("notify failed for attempt %s: %v", attempt.ID, err)
		}
	}

	return attempt, nil
}

func (uc *CompletePayment) record(
	ctx context.Context,
	actorID *uint,
	action audit.Action,
	attempt *models.PaymentAttempt,
	details map[string]any,
) {
	target := &audit.Target{Type: "payment_attempt", ID: attempt.ID}
	if _, err := uc.recorder.Record(ctx, actorID, action, target, details, nil); err != nil {
		log.Printf("audit write failed for %s: %v", action, err)
	}
}
