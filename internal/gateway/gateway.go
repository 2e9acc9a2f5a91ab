package gateway

import (
	"context"

	"github.com/capmatchph/capital-match-api/internal/models"
)

// Session is what a checkout hands back to the frontend.
type Session struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway is the pluggable checkout strategy. Real payment-service
// providers are explicitly out of scope; implementations only issue a
// session for a PENDING attempt and never touch attempt state.
type Gateway interface {
	CreateCheckout(ctx context.Context, attempt *models.PaymentAttempt) (*Session, error)
}
