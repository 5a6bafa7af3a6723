package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

// SupplierApplication is the core record representing a supplier's profile,
// vetting status, and typed service-details schema. One row per supplier
// owner; schools only see approved rows.
type SupplierApplication struct {
	ID             uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	CompanyName    string               `gorm:"column:company_name;not null"`
	ContactName    string               `gorm:"column:contact_name;not null"`
	ContactEmail   string               `gorm:"column:contact_email;not null"`
	ContactPhone   *string              `gorm:"column:contact_phone"`
	Website        *string              `gorm:"column:website"`
	Description    *string              `gorm:"column:description"`
	City           string               `gorm:"column:city;not null"`
	State          string               `gorm:"column:state;not null"`
	SupplierType   enums.SupplierType   `gorm:"column:supplier_type;type:supplier_type;not null"`
	PaymentModes   pq.StringArray       `gorm:"column:payment_modes;type:text[];not null"`
	Status         enums.SupplierStatus `gorm:"column:status;type:supplier_status;not null;default:'pending'"`
	ServiceDetails types.ServiceDetails `gorm:"column:service_details;type:jsonb"`
	BrochureURL    *string              `gorm:"column:brochure_url"`
	DecisionNote   *string              `gorm:"column:decision_note"`
	DecidedBy      *uuid.UUID           `gorm:"column:decided_by;type:uuid"`
	DecidedAt      *time.Time           `gorm:"column:decided_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
