package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

// SupplierDTO exposes the full application record. Suppliers see their own
// row in any status; schools and admins receive it through detail endpoints.
type SupplierDTO struct {
	ID             uuid.UUID            `json:"id"`
	OwnerID        uuid.UUID            `json:"owner_id"`
	CompanyName    string               `json:"company_name"`
	ContactName    string               `json:"contact_name"`
	ContactEmail   string               `json:"contact_email"`
	ContactPhone   *string              `json:"contact_phone,omitempty"`
	Website        *string              `json:"website,omitempty"`
	Description    *string              `json:"description,omitempty"`
	City           string               `json:"city"`
	State          string               `json:"state"`
	SupplierType   enums.SupplierType   `json:"supplier_type"`
	PaymentModes   []string             `json:"payment_modes"`
	Status         enums.SupplierStatus `json:"status"`
	ServiceDetails types.ServiceDetails `json:"service_details"`
	BrochureURL    *string              `json:"brochure_url,omitempty"`
	DecisionNote   *string              `json:"decision_note,omitempty"`
	DecidedAt      *time.Time           `json:"decided_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// RatingOverview carries the aggregate rating shown on supplier cards.
type RatingOverview struct {
	Overall float64 `json:"overall"`
	Count   int     `json:"count"`
}

// SupplierCardDTO is the school-facing list item for approved suppliers.
type SupplierCardDTO struct {
	ID           uuid.UUID          `json:"id"`
	CompanyName  string             `json:"company_name"`
	Description  *string            `json:"description,omitempty"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	SupplierType enums.SupplierType `json:"supplier_type"`
	PaymentModes []string           `json:"payment_modes"`
	BrochureURL  *string            `json:"brochure_url,omitempty"`
	Rating       RatingOverview     `json:"rating"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ListFilters describe the school-facing browse knobs. All populated filters
// are AND-composed; string matches are case-insensitive.
type ListFilters struct {
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	SupplierType string `json:"supplier_type,omitempty"`
	PaymentMode  string `json:"payment_mode,omitempty"`
	Query        string `json:"q,omitempty"`
}

// ListInput bundles filters with cursor pagination.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is one page of supplier cards.
type ListResult struct {
	Suppliers  []SupplierCardDTO `json:"suppliers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// AdminListInput pages applications by vetting status for review queues.
type AdminListInput struct {
	Status     enums.SupplierStatus
	Pagination pagination.Params
}

// AdminListResult is one page of full application records.
type AdminListResult struct {
	Applications []SupplierDTO `json:"applications"`
	NextCursor   string        `json:"next_cursor,omitempty"`
}

// SubmitApplicationInput captures a supplier's initial application.
type SubmitApplicationInput struct {
	CompanyName    string               `json:"company_name" validate:"required"`
	ContactName    string               `json:"contact_name" validate:"required"`
	ContactEmail   string               `json:"contact_email" validate:"required,email"`
	ContactPhone   *string              `json:"contact_phone,omitempty"`
	Website        *string              `json:"website,omitempty"`
	Description    *string              `json:"description,omitempty"`
	City           string               `json:"city" validate:"required"`
	State          string               `json:"state" validate:"required"`
	SupplierType   string               `json:"supplier_type" validate:"required"`
	PaymentModes   []string             `json:"payment_modes" validate:"required,min=1"`
	ServiceDetails types.ServiceDetails `json:"service_details"`
}

// UpdateApplicationInput carries partial profile edits. Nil fields are left
// untouched; vetting status and decision fields are never editable here.
type UpdateApplicationInput struct {
	CompanyName    *string               `json:"company_name,omitempty"`
	ContactName    *string               `json:"contact_name,omitempty"`
	ContactEmail   *string               `json:"contact_email,omitempty"`
	ContactPhone   *string               `json:"contact_phone,omitempty"`
	Website        *string               `json:"website,omitempty"`
	Description    *string               `json:"description,omitempty"`
	City           *string               `json:"city,omitempty"`
	State          *string               `json:"state,omitempty"`
	PaymentModes   *[]string             `json:"payment_modes,omitempty"`
	ServiceDetails *types.ServiceDetails `json:"service_details,omitempty"`
}

// DecisionInput captures an admin's vetting decision.
type DecisionInput struct {
	SupplierID  uuid.UUID
	Decision    string
	Note        *string
	AdminUserID uuid.UUID
}

// FromModel maps the persisted application into a DTO.
func FromModel(m *models.SupplierApplication) *SupplierDTO {
	if m == nil {
		return nil
	}
	return &SupplierDTO{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		CompanyName:    m.CompanyName,
		ContactName:    m.ContactName,
		ContactEmail:   m.ContactEmail,
		ContactPhone:   m.ContactPhone,
		Website:        m.Website,
		Description:    m.Description,
		City:           m.City,
		State:          m.State,
		SupplierType:   m.SupplierType,
		PaymentModes:   append([]string(nil), m.PaymentModes...),
		Status:         m.Status,
		ServiceDetails: m.ServiceDetails,
		BrochureURL:    m.BrochureURL,
		DecisionNote:   m.DecisionNote,
		DecidedAt:      m.DecidedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CardFromModel maps an approved application into its public card shape.
func CardFromModel(m *models.SupplierApplication, rating RatingOverview) SupplierCardDTO {
	return SupplierCardDTO{
		ID:           m.ID,
		CompanyName:  m.CompanyName,
		Description:  m.Description,
		City:         m.City,
		State:        m.State,
		SupplierType: m.SupplierType,
		PaymentModes: append([]string(nil), m.PaymentModes...),
		BrochureURL:  m.BrochureURL,
		Rating:       rating,
		CreatedAt:    m.CreatedAt,
	}
}
