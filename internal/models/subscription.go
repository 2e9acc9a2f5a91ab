package models

import "time"

// Subscription is the authoritative entitlement record, one per
// account. Mutated only through the entitlement ledger.
type Subscription struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AccountID uint `gorm:"uniqueIndex;not null" json:"account_id"`

	Tier              string     `gorm:"size:10;not null;default:'NONE'" json:"tier"`
	CancelAtPeriodEnd bool       `gorm:"not null;default:false" json:"cancel_at_period_end"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
