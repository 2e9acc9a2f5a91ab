package entitlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/capmatchph/capital-match-api/internal/audit"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/models"
)

// fakeRepo is an in-memory Repository with grant dedup keyed
// account:attempt, mirroring the unique index on the real table.
type fakeRepo struct {
	subs          map[uint]*models.Subscription
	grants        map[string]bool
	providerTiers map[uint]Tier
	failGrant     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs:          map[uint]*models.Subscription{},
		grants:        map[string]bool{},
		providerTiers: map[uint]Tier{},
	}
}

func (r *fakeRepo) GetSubscription(_ context.Context, accountID uint) (*models.Subscription, error) {
	sub, ok := r.subs[accountID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeRepo) ListSubscriptions(_ context.Context, accountIDs []uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, id := range accountIDs {
		if sub, ok := r.subs[id]; ok {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeRepo) SaveSubscription(_ context.Context, sub *models.Subscription) error {
	if sub.ID == 0 {
		sub.ID = uint(len(r.subs) + 1)
	}
	cp := *sub
	r.subs[sub.AccountID] = &cp
	return nil
}

func (r *fakeRepo) InsertGrant(_ context.Context, grant *models.EntitlementGrant) (bool, error) {
	if r.failGrant != nil {
		return false, r.failGrant
	}
	key := fmt.Sprintf("%d:%s", grant.AccountID, grant.AttemptID)
	if r.grants[key] {
		return false, nil
	}
	r.grants[key] = true
	return true, nil
}

func (r *fakeRepo) SetProviderTier(_ context.Context, accountID uint, tier Tier) error {
	r.providerTiers[accountID] = tier
	return nil
}

// memAuditStore collects entries in insertion order.
type memAuditStore struct {
	entries []models.AuditLog
}

func (s *memAuditStore) Append(_ context.Context, entry *models.AuditLog) error {
	entry.ID = uint(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memAuditStore) List(_ context.Context, _ audit.Filter, limit, offset int) ([]models.AuditLog, int64, error) {
	return s.entries, int64(len(s.entries)), nil
}

func newTestLedger() (*Ledger, *fakeRepo, *memAuditStore) {
	repo := newFakeRepo()
	store := &memAuditStore{}
	l := NewLedger(repo, audit.NewRecorder(store))
	return l, repo, store
}

func premiumAttempt(id string) *models.PaymentAttempt {
	return &models.PaymentAttempt{
		ID:          id,
		AmountMinor: 150000,
		Currency:    "USD",
		PlanTier:    string(TierPremium),
	}
}

func TestApplyPaymentSuccessUpgrades(t *testing.T) {
	l, repo, store := newTestLedger()
	ctx := context.Background()

	sub, err := l.ApplyPaymentSuccess(ctx, 1, premiumAttempt("att-1"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sub.Tier != string(TierPremium) {
		t.Fatalf("expected PREMIUM, got %s", sub.Tier)
	}
	if sub.CurrentPeriodEnd == nil {
		t.Fatal("period end must be set")
	}
	if sub.CancelAtPeriodEnd {
		t.Fatal("a fresh payment clears any pending cancellation")
	}
	if repo.providerTiers[1] != TierPremium {
		t.Fatalf("read model not refreshed: %s", repo.providerTiers[1])
	}

	tier, err := l.CurrentTier(ctx, 1)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if tier != TierPremium {
		t.Fatalf("expected PREMIUM, got %s", tier)
	}

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(store.entries))
	}
	if store.entries[0].Action != string(audit.ActionSubscriptionChanged) {
		t.Fatalf("unexpected action %s", store.entries[0].Action)
	}
}

func TestApplyPaymentSuccessIdempotentPerAttempt(t *testing.T) {
	l, repo, store := newTestLedger()
	ctx := context.Background()

	attempt := premiumAttempt("att-dup")
	if _, err := l.ApplyPaymentSuccess(ctx, 1, attempt); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	firstEnd := *repo.subs[1].CurrentPeriodEnd

	if _, err := l.ApplyPaymentSuccess(ctx, 1, attempt); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	if got := *repo.subs[1].CurrentPeriodEnd; !got.Equal(firstEnd) {
		t.Fatal("replayed attempt must not extend the period")
	}
	if len(store.entries) != 1 {
		t.Fatalf("replayed attempt must not double-log, got %d entries", len(store.entries))
	}
}

func TestApplyPaymentSuccessNewAttemptExtends(t *testing.T) {
	l, repo, _ := newTestLedger()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	if _, err := l.ApplyPaymentSuccess(ctx, 1, premiumAttempt("att-a")); err != nil {
		t.Fatalf("apply att-a: %v", err)
	}

	l.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	if _, err := l.ApplyPaymentSuccess(ctx, 1, premiumAttempt("att-b")); err != nil {
		t.Fatalf("apply att-b: %v", err)
	}

	want := base.Add(10 * 24 * time.Hour).Add(subscriptionPeriod)
	if got := *repo.subs[1].CurrentPeriodEnd; !got.Equal(want) {
		t.Fatalf("expected period end %v, got %v", want, got)
	}
}

func TestApplyPaymentSuccessGrantFailure(t *testing.T) {
	l, repo, store := newTestLedger()
	repo.failGrant = errors.New("connection refused")

	_, err := l.ApplyPaymentSuccess(context.Background(), 1, premiumAttempt("att-x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := repo.subs[1]; ok {
		t.Fatal("failed grant must not create a subscription")
	}
	if len(store.entries) != 0 {
		t.Fatal("failed grant must not be audited as a tier change")
	}
}

func TestCurrentTierLazilyExpires(t *testing.T) {
	l, _, _ := newTestLedger()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	if _, err := l.ApplyPaymentSuccess(ctx, 1, premiumAttempt("att-1")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	l.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	tier, err := l.CurrentTier(ctx, 1)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if tier != TierNone {
		t.Fatalf("expired subscription must read as NONE, got %s", tier)
	}
}

func TestTiersForDefaultsToNone(t *testing.T) {
	l, _, _ := newTestLedger()
	ctx := context.Background()

	if _, err := l.ApplyPaymentSuccess(ctx, 2, premiumAttempt("att-2")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	tiers, err := l.TiersFor(ctx, []uint{1, 2, 3})
	if err != nil {
		t.Fatalf("tiers for: %v", err)
	}
	if tiers[1] != TierNone || tiers[3] != TierNone {
		t.Fatal("accounts without a subscription must resolve to NONE")
	}
	if tiers[2] != TierPremium {
		t.Fatalf("expected PREMIUM for account 2, got %s", tiers[2])
	}
}

func TestCancelAtPeriodEnd(t *testing.T) {
	l, repo, store := newTestLedger()
	ctx := context.Background()

	if _, err := l.ApplyPaymentSuccess(ctx, 1, premiumAttempt("att-1")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	sub, err := l.CancelAtPeriodEnd(ctx, 1)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !sub.CancelAtPeriodEnd {
		t.Fatal("flag not set")
	}
	if sub.Tier != string(TierPremium) {
		t.Fatal("cancellation must not downgrade immediately")
	}
	if repo.providerTiers[1] != TierPremium {
		t.Fatal("read model must keep the tier until expiry")
	}

	last := store.entries[len(store.entries)-1]
	if last.Action != string(audit.ActionSubscriptionCancel) {
		t.Fatalf("unexpected action %s", last.Action)
	}
}

func TestCancelWithoutSubscription(t *testing.T) {
	l, _, _ := newTestLedger()

	_, err := l.CancelAtPeriodEnd(context.Background(), 42)
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
