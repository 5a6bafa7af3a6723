package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the single thread between one school and one supplier.
// The unique pair index guarantees at most one thread per school/supplier.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SchoolID      uuid.UUID `gorm:"column:school_id;type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	SupplierID    uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	LastMessageAt time.Time `gorm:"column:last_message_at;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
