package notify

import (
	"context"
	"log"

	"github.com/capmatchph/capital-match-api/internal/models"
)

// Notifier is the outbound email/webhook collaborator. Delivery is
// best-effort: a failed notification never affects committed state.
type Notifier interface {
	UserRegistered(ctx context.Context, account *models.Account) error
	PaymentSucceeded(ctx context.Context, accountID uint, attempt *models.PaymentAttempt) error
}

// LogNotifier writes notifications to the process log. Stands in for
// a real email sender in development and tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) UserRegistered(_ context.Context, account *models.Account) error {
	log.Printf("notify: welcome email to %s (account %d)", account.Email, account.ID)
	return nil
}

func (n *LogNotifier) PaymentSucceeded(_ context.Context, accountID uint, attempt *models.PaymentAttempt) error {
	log.Printf("notify: payment receipt for account %d, attempt %s (%d %s)",
		accountID, attempt.ID, attempt.AmountMinor, attempt.Currency)
	return nil
}

// Compile-time check
var _ Notifier = (*LogNotifier)(nil)
