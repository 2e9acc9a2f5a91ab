package entitlement

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/capmatchph/capital-match-api/internal/audit"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/models"
)

const subscriptionPeriod = 30 * 24 * time.Hour

// Ledger is the single source of truth for what a provider is
// entitled to show. ApplyPaymentSuccess is the only tier-raising path.
type Ledger struct {
	repo     Repository
	recorder *audit.Recorder
	now      func() time.Time
}

func NewLedger(repo Repository, recorder *audit.Recorder) *Ledger {
	return &Ledger{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// CurrentTier reads the subscription record, defaulting to NONE.
// Expiry is evaluated lazily here rather than by a background sweep.
func (l *Ledger) CurrentTier(ctx context.Context, accountID uint) (Tier, error) {
	sub, err := l.repo.GetSubscription(ctx, accountID)
	if err != nil {
		return TierNone, err
	}
	return l.effectiveTier(sub), nil
}

// TiersFor resolves tiers for a candidate set in one read.
func (l *Ledger) TiersFor(ctx context.Context, accountIDs []uint) (map[uint]Tier, error) {
	tiers := make(map[uint]Tier, len(accountIDs))
	for _, id := range accountIDs {
		tiers[id] = TierNone
	}

	subs, err := l.repo.ListSubscriptions(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		tiers[subs[i].AccountID] = l.effectiveTier(&subs[i])
	}
	return tiers, nil
}

// ApplyPaymentSuccess raises the account's tier to the attempt's plan
// tier. Idempotent per attempt id: the grant row's unique constraint
// is the dedup key, so re-applying the same attempt never
// double-upgrades or double-logs.
func (l *Ledger) ApplyPaymentSuccess(
	ctx context.Context,
	accountID uint,
	attempt *models.PaymentAttempt,
) (*models.Subscription, error) {

	newTier := ParseTier(attempt.PlanTier)

	inserted, err := l.repo.InsertGrant(ctx, &models.EntitlementGrant{
		AccountID: accountID,
		AttemptID: attempt.ID,
		Tier:      string(newTier),
	})
	if err != nil {
		return nil, err
	}

	sub, err := l.repo.GetSubscription(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !inserted {
		// Already applied for this attempt: no-op.
		return sub, nil
	}

	if sub == nil {
		sub = &models.Subscription{AccountID: accountID}
	}

	oldTier := l.effectiveTier(sub)
	periodEnd := l.now().Add(subscriptionPeriod)

	sub.Tier = string(newTier)
	sub.CancelAtPeriodEnd = false
	sub.CurrentPeriodEnd = &periodEnd

	if err := l.repo.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if err := l.repo.SetProviderTier(ctx, accountID, newTier); err != nil {
		return nil, err
	}

	l.record(ctx, &accountID, audit.ActionSubscriptionChanged, sub, map[string]any{
		"old_tier":   string(oldTier),
		"new_tier":   string(newTier),
		"attempt_id": attempt.ID,
	})

	return sub, nil
}

// CancelAtPeriodEnd sets the flag without downgrading; the tier drops
// to NONE only once the current period has elapsed.
func (l *Ledger) CancelAtPeriodEnd(ctx context.Context, accountID uint) (*models.Subscription, error) {
	sub, err := l.repo.GetSubscription(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if sub == nil || l.effectiveTier(sub) == TierNone {
		return nil, httperr.NotFoundErr("subscription_not_found")
	}

	sub.CancelAtPeriodEnd = true
	if err := l.repo.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}

	details := map[string]any{"tier": sub.Tier}
	if sub.CurrentPeriodEnd != nil {
		details["current_period_end"] = sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)
	}
	l.record(ctx, &accountID, audit.ActionSubscriptionCancel, sub, details)

	return sub, nil
}

func (l *Ledger) effectiveTier(sub *models.Subscription) Tier {
	if sub == nil {
		return TierNone
	}
	if sub.CurrentPeriodEnd != nil && l.now().After(*sub.CurrentPeriodEnd) {
		return TierNone
	}
	return ParseTier(sub.Tier)
}

// Audit-write failure must not block the triggering mutation.
func (l *Ledger) record(
	ctx context.Context,
	actorID *uint,
	action audit.Action,
	sub *models.Subscription,
	details map[string]any,
) {
	target := &audit.Target{Type: "subscription", ID: strconv.FormatUint(uint64(sub.ID), 10)}
	if _, err := l.recorder.Record(ctx, actorID, action, target, details, nil); err != nil {
		log.Printf("audit write failed for %s: %v", action, err)
	}
}
