package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplierFeedback is free-form commentary a school leaves on a supplier,
// independent of any rating submission.
type SupplierFeedback struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Body       string    `gorm:"column:body;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
