package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/capmatchph/capital-match-api/internal/domain/payment"
	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/httpresp"
	"github.com/capmatchph/capital-match-api/internal/middleware"
	"github.com/capmatchph/capital-match-api/internal/models"
	ucPayment "github.com/capmatchph/capital-match-api/internal/usecase/payment"
)

type PaymentHandler struct {
	db              *gorm.DB
	initiateUC      *ucPayment.InitiatePayment
	completeUC      *ucPayment.CompletePayment
	cancelUC        *ucPayment.CancelSubscription
	ledger          *entitlement.Ledger
	defaultCurrency string
}

func NewPaymentHandler(
	db *gorm.DB,
	initiateUC *ucPayment.InitiatePayment,
	completeUC *ucPayment.CompletePayment,
	cancelUC *ucPayment.CancelSubscription,
	ledger *entitlement.Ledger,
	defaultCurrency string,
) *PaymentHandler {
	return &PaymentHandler{
		db:              db,
		initiateUC:      initiateUC,
		completeUC:      completeUC,
		cancelUC:        cancelUC,
		ledger:          ledger,
		defaultCurrency: defaultCurrency,
	}
}

// --------- Requests ---------

type CheckoutRequest struct {
	AmountMinor int64  `json:"amount_minor" binding:"required"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// CallbackRequest is the simulated gateway notification shape. A real
// gateway webhook would map onto the same two fields.
type CallbackRequest struct {
	AttemptID string `json:"attempt_id" binding:"required"`
	Outcome   string `json:"outcome" binding:"required,oneof=SUCCEEDED FAILED"`
}

// --------- Handlers ---------

func (h *PaymentHandler) Checkout(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "details": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = h.defaultCurrency
	}

	attempt, session, err := h.initiateUC.Execute(
		c.Request.Context(),
		accountID,
		req.AmountMinor,
		req.Currency,
		req.Description,
	)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"attempt":      attemptPayload(attempt),
		"redirect_url": session.RedirectURL,
	})
}

// Callback is the completion entrypoint (webhook-shaped). Duplicate
// deliveries come back as 409 invalid_transition rather than silent
// acceptance.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "details": err.Error()})
		return
	}

	attempt, err := h.completeUC.Execute(
		c.Request.Context(),
		req.AttemptID,
		domain.Status(req.Outcome),
	)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempt": attemptPayload(attempt)})
}

func (h *PaymentHandler) History(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)

	var attempts []models.PaymentAttempt
	if err := h.db.
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		httperr.Internal(c, "payment_history_failed", "Failed to list payments.")
		return
	}

	out := make([]gin.H, 0, len(attempts))
	for i := range attempts {
		out = append(out, attemptPayload(&attempts[i]))
	}

	httpresp.List(c, out)
}

func (h *PaymentHandler) SubscriptionStatus(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)

	tier, err := h.ledger.CurrentTier(c.Request.Context(), accountID)
	if err != nil {
		httperr.Internal(c, "subscription_status_failed", "Failed to load subscription.")
		return
	}

	resp := gin.H{"tier": string(tier)}

	var sub models.Subscription
	if err := h.db.Where("account_id = ?", accountID).First(&sub).Error; err == nil {
		resp["cancel_at_period_end"] = sub.CancelAtPeriodEnd
		if sub.CurrentPeriodEnd != nil {
			resp["current_period_end"] = sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CancelSubscription(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)

	sub, err := h.cancelUC.Execute(c.Request.Context(), accountID)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":                 sub.Tier,
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
	})
}

// --------- Serialization ---------

func attemptPayload(a *models.PaymentAttempt) gin.H {
	return gin.H{
		"id":          a.ID,
		"amount":      formatMinor(a.AmountMinor),
		"currency":    a.Currency,
		"status":      a.Status,
		"description": a.Description,
		"plan_tier":   a.PlanTier,
		"created_at":  a.CreatedAt,
		"updated_at":  a.UpdatedAt,
	}
}
