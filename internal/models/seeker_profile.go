package models

import "time"

type SeekerProfile struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AccountID uint    `gorm:"uniqueIndex;not null" json:"account_id"`
	Account   Account `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CompanyName string `gorm:"size:255" json:"company_name"`
	Industry    string `gorm:"size:100" json:"industry"`
	Location    string `gorm:"size:255" json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
