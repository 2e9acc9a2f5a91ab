package models

import "time"

// ===============================
// Roles
// ===============================

const (
	RoleSeeker   = "SEEKER"
	RoleProvider = "PROVIDER"
	RoleAdmin    = "ADMIN"
)

// Account is owned by the identity collaborator and referenced by id
// everywhere else. Role is immutable after creation.
type Account struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:10;not null;default:'SEEKER'" json:"role"`
	Active       bool   `gorm:"not null;default:true" json:"active"`
	ConsentGiven bool   `gorm:"not null;default:false" json:"consent_given"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
