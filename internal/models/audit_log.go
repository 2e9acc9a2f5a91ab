package models

import "time"

// AuditLog is append-only: rows are never updated or deleted after
// creation. ActorID is a weak reference (SET NULL on account delete);
// TargetType/TargetID are both present or both absent.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ActorID *uint    `gorm:"index" json:"actor_id"`
	Actor   *Account `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Action string `gorm:"size:40;not null;index" json:"action"`

	TargetType *string `gorm:"size:40" json:"target_type"`
	TargetID   *string `gorm:"size:64" json:"target_id"`

	Details    string  `gorm:"type:text" json:"details"`
	OriginAddr *string `gorm:"size:64" json:"origin_addr"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
