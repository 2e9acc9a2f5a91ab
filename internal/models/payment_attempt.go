package models

import "time"

// ===============================
// Payment Attempt Status
// ===============================

const (
	PaymentPending   = "PENDING"
	PaymentSucceeded = "SUCCEEDED"
	PaymentFailed    = "FAILED"
)

// PaymentAttempt is one checkout flow. Status only ever moves
// PENDING -> SUCCEEDED or PENDING -> FAILED; terminal states are final.
type PaymentAttempt struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	AccountID uint `gorm:"index;not null" json:"account_id"`

	// Integer minor units (cents). Decimal rendering happens only at
	// the presentation boundary.
	AmountMinor int64  `gorm:"not null" json:"amount_minor"`
	Currency    string `gorm:"size:3;not null" json:"currency"`

	Status      string `gorm:"size:10;not null;default:'PENDING'" json:"status"`
	Description string `gorm:"size:255" json:"description"`

	// Tier this attempt pays for, resolved from the plan catalog at
	// initiate time.
	PlanTier string `gorm:"size:10;not null" json:"plan_tier"`

	GatewayRef string `gorm:"size:64" json:"gateway_ref"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
