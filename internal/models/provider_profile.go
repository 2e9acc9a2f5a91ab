package models

import "time"

type ProviderProfile struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AccountID uint    `gorm:"uniqueIndex;not null" json:"account_id"`
	Account   Account `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CompanyName  string   `gorm:"size:255" json:"company_name"`
	ServiceTypes []string `gorm:"serializer:json;type:text" json:"service_types"`
	GeosServed   []string `gorm:"serializer:json;type:text" json:"geos_served"`
	Location     string   `gorm:"size:255" json:"location"`

	// Read model only. Written exclusively by the entitlement ledger;
	// the Subscription row stays authoritative.
	SubscriptionTier string `gorm:"size:10;not null;default:'NONE'" json:"subscription_tier"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
