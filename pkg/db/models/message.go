package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry inside a conversation.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID  `gorm:"column:conversation_id;type:uuid;not null;index"`
	SenderID       uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	Body           string     `gorm:"column:body;not null"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
