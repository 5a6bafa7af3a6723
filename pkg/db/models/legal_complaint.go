package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
)

// LegalComplaint is a formal grievance filed by a school against a supplier.
// Admins move it through the complaint lifecycle; suppliers see complaints
// filed against them.
type LegalComplaint struct {
	ID         uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID             `gorm:"column:supplier_id;type:uuid;not null;index"`
	FilerID    uuid.UUID             `gorm:"column:filer_id;type:uuid;not null;index"`
	Subject    string                `gorm:"column:subject;not null"`
	Body       string                `gorm:"column:body;not null"`
	Status     enums.ComplaintStatus `gorm:"column:status;type:complaint_status;not null;default:'open'"`
	Resolution *string               `gorm:"column:resolution"`
	ResolvedBy *uuid.UUID            `gorm:"column:resolved_by;type:uuid"`
	ResolvedAt *time.Time            `gorm:"column:resolved_at"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
