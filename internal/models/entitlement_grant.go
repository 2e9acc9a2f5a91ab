package models

import "time"

// EntitlementGrant records one applied payment attempt. The unique
// index on (account_id, attempt_id) is the race-safe dedup key that
// makes ApplyPaymentSuccess idempotent per attempt.
type EntitlementGrant struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AccountID uint   `gorm:"uniqueIndex:idx_grant_account_attempt;not null" json:"account_id"`
	AttemptID string `gorm:"uniqueIndex:idx_grant_account_attempt;size:36;not null" json:"attempt_id"`

	Tier string `gorm:"size:10;not null" json:"tier"`

	CreatedAt time.Time `json:"created_at"`
}
