package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/capmatchph/capital-match-api/internal/models"
)

// Simulated fulfills the gateway contract without any external call.
// The redirect points straight at the frontend success page; the
// completion callback then drives the state machine.
type Simulated struct {
	appBaseURL string
}

func NewSimulated(appBaseURL string) *Simulated {
	return &Simulated{appBaseURL: appBaseURL}
}

func (g *Simulated) CreateCheckout(_ context.Context, attempt *models.PaymentAttempt) (*Session, error) {
	return &Session{
		Reference: fmt.Sprintf("sim_%s", uuid.NewString()),
		RedirectURL: fmt.Sprintf(
			"%s/payment/success?attempt_id=%s",
			g.appBaseURL, attempt.ID,
		),
	}, nil
}

// Compile-time check
var _ Gateway = (*Simulated)(nil)
