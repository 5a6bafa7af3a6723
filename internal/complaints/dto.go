package complaints

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
)

// ComplaintDTO is one legal complaint as exposed to filers, admins, and the
// supplier it targets.
type ComplaintDTO struct {
	ID         uuid.UUID             `json:"id"`
	SupplierID uuid.UUID             `json:"supplier_id"`
	FilerID    uuid.UUID             `json:"filer_id"`
	Subject    string                `json:"subject"`
	Body       string                `json:"body"`
	Status     enums.ComplaintStatus `json:"status"`
	Resolution *string               `json:"resolution,omitempty"`
	ResolvedAt *time.Time            `json:"resolved_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// FileInput captures a new complaint.
type FileInput struct {
	SupplierID uuid.UUID `json:"supplier_id" validate:"required"`
	Subject    string    `json:"subject" validate:"required,max=200"`
	Body       string    `json:"body" validate:"required,max=8000"`
}

// TransitionInput moves a complaint through the review workflow.
type TransitionInput struct {
	ComplaintID uuid.UUID
	Status      string
	Resolution  *string
	AdminUserID uuid.UUID
}

// AdminListInput pages complaints, optionally filtered by status.
type AdminListInput struct {
	Status     *enums.ComplaintStatus
	Pagination pagination.Params
}

// ListResult is one page of complaints.
type ListResult struct {
	Complaints []ComplaintDTO `json:"complaints"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted complaint into a DTO.
func FromModel(m *models.LegalComplaint) *ComplaintDTO {
	if m == nil {
		return nil
	}
	return &ComplaintDTO{
		ID:         m.ID,
		SupplierID: m.SupplierID,
		FilerID:    m.FilerID,
		Subject:    m.Subject,
		Body:       m.Body,
		Status:     m.Status,
		Resolution: m.Resolution,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
