package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
)

// SupplierSubmittedEvent signals a new supplier application entering review.
type SupplierSubmittedEvent struct {
	SupplierID   uuid.UUID          `json:"supplier_id"`
	OwnerID      uuid.UUID          `json:"owner_id"`
	CompanyName  string             `json:"company_name"`
	SupplierType enums.SupplierType `json:"supplier_type"`
}

// SupplierStatusChangedEvent is emitted when an admin moves an application
// between vetting states. FromStatus lets consumers render the transition.
type SupplierStatusChangedEvent struct {
	SupplierID   uuid.UUID            `json:"supplier_id"`
	OwnerID      uuid.UUID            `json:"owner_id"`
	CompanyName  string               `json:"company_name"`
	FromStatus   enums.SupplierStatus `json:"from_status"`
	ToStatus     enums.SupplierStatus `json:"to_status"`
	DecisionNote string               `json:"decision_note,omitempty"`
	DecidedAt    time.Time            `json:"decided_at"`
}

// RatingSubmittedEvent surfaces a new or replaced rating submission.
type RatingSubmittedEvent struct {
	SupplierID      uuid.UUID `json:"supplier_id"`
	SupplierOwnerID uuid.UUID `json:"supplier_owner_id"`
	RaterID         uuid.UUID `json:"rater_id"`
	Replaced        bool      `json:"replaced"`
	OverallScore    float64   `json:"overall_score"`
}

// MessageSentEvent tells downstream systems to alert the other participant.
type MessageSentEvent struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	MessageID      uuid.UUID `json:"message_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	Preview        string    `json:"preview"`
}

// ComplaintFiledEvent is emitted when a school files a legal complaint.
type ComplaintFiledEvent struct {
	ComplaintID     uuid.UUID `json:"complaint_id"`
	SupplierID      uuid.UUID `json:"supplier_id"`
	SupplierOwnerID uuid.UUID `json:"supplier_owner_id"`
	FilerID         uuid.UUID `json:"filer_id"`
	Subject         string    `json:"subject"`
}

// ComplaintStatusMovedEvent mirrors the payload emitted on complaint lifecycle moves.
type ComplaintStatusMovedEvent struct {
	ComplaintID     uuid.UUID             `json:"complaint_id"`
	SupplierID      uuid.UUID             `json:"supplier_id"`
	SupplierOwnerID uuid.UUID             `json:"supplier_owner_id"`
	FilerID         uuid.UUID             `json:"filer_id"`
	FromStatus      enums.ComplaintStatus `json:"from_status"`
	ToStatus        enums.ComplaintStatus `json:"to_status"`
	Resolution      string                `json:"resolution,omitempty"`
}
