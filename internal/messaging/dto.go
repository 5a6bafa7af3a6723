package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
)

// Participant identifies the caller inside a conversation. SupplierID is set
// only for supplier-role users with a submitted application.
type Participant struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	SupplierID *uuid.UUID
}

// ConversationDTO is one thread as seen by either participant.
type ConversationDTO struct {
	ID            uuid.UUID `json:"id"`
	SchoolID      uuid.UUID `json:"school_id"`
	SupplierID    uuid.UUID `json:"supplier_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessageDTO is one message inside a thread.
type MessageDTO struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// StartInput opens (or returns) the thread with one supplier.
type StartInput struct {
	SupplierID uuid.UUID `json:"supplier_id" validate:"required"`
}

// SendInput is the body of a new message.
type SendInput struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// ListMessagesInput pages a thread's messages, newest first.
type ListMessagesInput struct {
	ConversationID uuid.UUID
	Pagination     pagination.Params
}

// MessageListResult is one page of messages.
type MessageListResult struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func conversationFromModel(m *models.Conversation, unread int64) ConversationDTO {
	return ConversationDTO{
		ID:            m.ID,
		SchoolID:      m.SchoolID,
		SupplierID:    m.SupplierID,
		LastMessageAt: m.LastMessageAt,
		UnreadCount:   unread,
		CreatedAt:     m.CreatedAt,
	}
}

func messageFromModel(m *models.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
