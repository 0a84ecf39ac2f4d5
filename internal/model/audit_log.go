package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records who ran which ledger operation against which entity.
// Writes are best effort: a failed audit insert is logged but never aborts
// the parent workflow.
type AuditLog struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActorID  *uuid.UUID `gorm:"type:uuid;index"`
	Action   string     `gorm:"not null;index"`
	Entity   string     `gorm:"not null"`
	EntityID *uuid.UUID `gorm:"type:uuid"`
	Detail   string
	CreatedAt time.Time
}
