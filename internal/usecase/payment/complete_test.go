package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/capmatchph/capital-match-api/internal/audit"
	domain "github.com/capmatchph/capital-match-api/internal/domain/payment"
	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/gateway"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/models"
)

// ---------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------

type fakePaymentRepo struct {
	accounts map[uint]*models.Account
	attempts map[string]*models.PaymentAttempt
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		accounts: map[uint]*models.Account{},
		attempts: map[string]*models.PaymentAttempt{},
	}
}

func (r *fakePaymentRepo) GetAccount(_ context.Context, id uint) (*models.Account, error) {
	acct, ok := r.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return acct, nil
}

func (r *fakePaymentRepo) CreateAttempt(_ context.Context, attempt *models.PaymentAttempt) error {
	cp := *attempt
	r.attempts[attempt.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetAttempt(_ context.Context, id string) (*models.PaymentAttempt, error) {
	attempt, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *attempt
	return &cp, nil
}

func (r *fakePaymentRepo) ListAttemptsByAccount(_ context.Context, accountID uint) ([]models.PaymentAttempt, error) {
	var out []models.PaymentAttempt
	for _, a := range r.attempts {
		if a.AccountID == accountID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FinalizeAttempt(_ context.Context, id string, to domain.Status) (bool, error) {
	attempt, ok := r.attempts[id]
	if !ok || attempt.Status != string(domain.StatusPending) {
		return false, nil
	}
	attempt.Status = string(to)
	return true, nil
}

type fakeEntRepo struct {
	subs          map[uint]*models.Subscription
	grants        map[string]bool
	providerTiers map[uint]entitlement.Tier
	failGrant     error
}

func newFakeEntRepo() *fakeEntRepo {
	return &fakeEntRepo{
		subs:          map[uint]*models.Subscription{},
		grants:        map[string]bool{},
		providerTiers: map[uint]entitlement.Tier{},
	}
}

func (r *fakeEntRepo) GetSubscription(_ context.Context, accountID uint) (*models.Subscription, error) {
	sub, ok := r.subs[accountID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeEntRepo) ListSubscriptions(_ context.Context, accountIDs []uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, id := range accountIDs {
		if sub, ok := r.subs[id]; ok {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeEntRepo) SaveSubscription(_ context.Context, sub *models.Subscription) error {
	if sub.ID == 0 {
		sub.ID = uint(len(r.subs) + 1)
	}
	cp := *sub
	r.subs[sub.AccountID] = &cp
	return nil
}

func (r *fakeEntRepo) InsertGrant(_ context.Context, grant *models.EntitlementGrant) (bool, error) {
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

func (r *fakeEntRepo) SetProviderTier(_ context.Context, accountID uint, tier entitlement.Tier) error {
	r.providerTiers[accountID] = tier
	return nil
}

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

func (s *memAuditStore) actions() []string {
	var out []string
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

type countingNotifier struct {
	succeeded int
}

func (n *countingNotifier) UserRegistered(context.Context, *models.Account) error { return nil }

func (n *countingNotifier) PaymentSucceeded(context.Context, uint, *models.PaymentAttempt) error {
	n.succeeded++
	return nil
}

// ---------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------

type fixture struct {
	repo     *fakePaymentRepo
	entRepo  *fakeEntRepo
	store    *memAuditStore
	notifier *countingNotifier
	ledger   *entitlement.Ledger
	initiate *InitiatePayment
	complete *CompletePayment
}

func newFixture() *fixture {
	repo := newFakePaymentRepo()
	entRepo := newFakeEntRepo()
	store := &memAuditStore{}
	notifier := &countingNotifier{}
	recorder := audit.NewRecorder(store)
	ledger := entitlement.NewLedger(entRepo, recorder)

	repo.accounts[1] = &models.Account{
		ID:     1,
		Email:  "provider@example.com",
		Role:   models.RoleProvider,
		Active: true,
	}

	return &fixture{
		repo:     repo,
		entRepo:  entRepo,
		store:    store,
		notifier: notifier,
		ledger:   ledger,
		initiate: NewInitiatePayment(repo, gateway.NewSimulated("http://localhost:3000"), recorder),
		complete: NewCompletePayment(repo, ledger, recorder, notifier),
	}
}

// ---------------------------------------------------------------
// Initiate
// ---------------------------------------------------------------

func TestInitiateCreatesPendingAttempt(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, session, err := fx.initiate.Execute(ctx, 1, 150000, "USD", "premium plan")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if attempt.Status != string(domain.StatusPending) {
		t.Fatalf("expected PENDING, got %s", attempt.Status)
	}
	if attempt.PlanTier != string(entitlement.TierPremium) {
		t.Fatalf("expected PREMIUM plan, got %s", attempt.PlanTier)
	}
	if session.Reference == "" || session.RedirectURL == "" {
		t.Fatal("checkout session must carry a reference and a redirect url")
	}
	if attempt.GatewayRef != session.Reference {
		t.Fatal("attempt must record the session reference")
	}

	stored, err := fx.repo.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if stored.AmountMinor != 150000 || stored.Currency != "USD" {
		t.Fatalf("stored attempt mismatch: %d %s", stored.AmountMinor, stored.Currency)
	}

	if got := fx.store.actions(); len(got) != 1 || got[0] != string(audit.ActionPaymentInitiated) {
		t.Fatalf("expected a single PAYMENT_INITIATED entry, got %v", got)
	}
}

func TestInitiateRejectsBadInput(t *testing.T) {
	fx := newFixture()
	fx.repo.accounts[2] = &models.Account{ID: 2, Email: "off@example.com", Role: models.RoleProvider, Active: false}

	tests := []struct {
		name      string
		accountID uint
		amount    int64
		currency  string
		kind      httperr.Kind
	}{
		{"unknown account", 99, 150000, "USD", httperr.KindNotFound},
		{"inactive account", 2, 150000, "USD", httperr.KindForbidden},
		{"zero amount", 1, 0, "USD", httperr.KindValidation},
		{"negative amount", 1, -500, "USD", httperr.KindValidation},
		{"off-catalog amount", 1, 12345, "USD", httperr.KindValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := fx.initiate.Execute(context.Background(), tc.accountID, tc.amount, tc.currency, "")
			if !httperr.IsKind(err, tc.kind) {
				t.Fatalf("expected kind %v, got %v", tc.kind, err)
			}
		})
	}

	if len(fx.store.entries) != 0 {
		t.Fatal("rejected initiations must not be audited")
	}
}

// ---------------------------------------------------------------
// Complete
// ---------------------------------------------------------------

func TestCompleteSuccessAppliesEntitlement(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, _, err := fx.initiate.Execute(ctx, 1, 150000, "USD", "")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	done, err := fx.complete.Execute(ctx, attempt.ID, domain.StatusSucceeded)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != string(domain.StatusSucceeded) {
		t.Fatalf("expected SUCCEEDED, got %s", done.Status)
	}

	tier, err := fx.ledger.CurrentTier(ctx, 1)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if tier != entitlement.TierPremium {
		t.Fatalf("expected PREMIUM after success, got %s", tier)
	}

	want := []string{
		string(audit.ActionPaymentInitiated),
		string(audit.ActionSubscriptionChanged),
		string(audit.ActionPaymentSucceeded),
	}
	got := fx.store.actions()
	if len(got) != len(want) {
		t.Fatalf("expected actions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected actions %v, got %v", want, got)
		}
	}

	if fx.notifier.succeeded != 1 {
		t.Fatalf("expected 1 receipt notification, got %d", fx.notifier.succeeded)
	}
}

func TestCompleteFailedDoesNotTouchEntitlement(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, _, err := fx.initiate.Execute(ctx, 1, 50000, "USD", "")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	done, err := fx.complete.Execute(ctx, attempt.ID, domain.StatusFailed)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != string(domain.StatusFailed) {
		t.Fatalf("expected FAILED, got %s", done.Status)
	}

	tier, _ := fx.ledger.CurrentTier(ctx, 1)
	if tier != entitlement.TierNone {
		t.Fatalf("failed payment must not change the tier, got %s", tier)
	}
	if fx.notifier.succeeded != 0 {
		t.Fatal("failed payment must not send a receipt")
	}

	last := fx.store.entries[len(fx.store.entries)-1]
	if last.Action != string(audit.ActionPaymentFailed) {
		t.Fatalf("unexpected action %s", last.Action)
	}
}

func TestCompleteDuplicateIsRejected(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, _, err := fx.initiate.Execute(ctx, 1, 150000, "USD", "")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := fx.complete.Execute(ctx, attempt.ID, domain.StatusSucceeded); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	for _, outcome := range []domain.Status{domain.StatusSucceeded, domain.StatusFailed} {
		_, err := fx.complete.Execute(ctx, attempt.ID, outcome)
		if !httperr.IsKind(err, httperr.KindInvalidTransition) {
			t.Fatalf("expected invalid transition for %s, got %v", outcome, err)
		}
	}

	// The tier was applied exactly once and the log holds a single
	// success entry.
	var successes, changes int
	for _, a := range fx.store.actions() {
		switch a {
		case string(audit.ActionPaymentSucceeded):
			successes++
		case string(audit.ActionSubscriptionChanged):
			changes++
		}
	}
	if successes != 1 || changes != 1 {
		t.Fatalf("expected 1 success and 1 tier change, got %d and %d", successes, changes)
	}
}

func TestCompleteUnknownAttempt(t *testing.T) {
	fx := newFixture()

	_, err := fx.complete.Execute(context.Background(), "no-such-attempt", domain.StatusSucceeded)
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(fx.store.entries) != 0 {
		t.Fatal("a lookup miss must not append to the audit log")
	}
}

func TestCompleteRejectsNonTerminalOutcome(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, _, err := fx.initiate.Execute(ctx, 1, 50000, "USD", "")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	_, err = fx.complete.Execute(ctx, attempt.ID, domain.StatusPending)
	if !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteReconciliationFailureLeavesPending(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, _, err := fx.initiate.Execute(ctx, 1, 150000, "USD", "")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	fx.entRepo.failGrant = errors.New("connection refused")
	_, err = fx.complete.Execute(ctx, attempt.ID, domain.StatusSucceeded)
	if !httperr.IsKind(err, httperr.KindReconciliation) {
		t.Fatalf("expected reconciliation failure, got %v", err)
	}

	stored, _ := fx.repo.GetAttempt(ctx, attempt.ID)
	if stored.Status != string(domain.StatusPending) {
		t.Fatalf("attempt must stay PENDING for retry, got %s", stored.Status)
	}

	last := fx.store.entries[len(fx.store.entries)-1]
	if last.Action != string(audit.ActionPaymentReconFailed) {
		t.Fatalf("unexpected action %s", last.Action)
	}
	if last.ActorID != nil {
		t.Fatal("reconciliation entries are system-initiated")
	}

	// Retry after the ledger recovers.
	fx.entRepo.failGrant = nil
	done, err := fx.complete.Execute(ctx, attempt.ID, domain.StatusSucceeded)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if done.Status != string(domain.StatusSucceeded) {
		t.Fatalf("expected SUCCEEDED after retry, got %s", done.Status)
	}
}

func TestCancelSubscriptionFlagsWithoutDowngrade(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	attempt, _, err := fx.initiate.Execute(ctx, 1, 50000, "USD", "")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := fx.complete.Execute(ctx, attempt.ID, domain.StatusSucceeded); err != nil {
		t.Fatalf("complete: %v", err)
	}

	sub, err := NewCancelSubscription(fx.ledger).Execute(ctx, 1)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !sub.CancelAtPeriodEnd {
		t.Fatal("flag not set")
	}

	tier, _ := fx.ledger.CurrentTier(ctx, 1)
	if tier != entitlement.TierBasic {
		t.Fatalf("tier must survive until period end, got %s", tier)
	}
}
