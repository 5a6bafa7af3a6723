package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

// RatingConfiguration stores a supplier's per-area override of the catalog
// defaults. Absence of a row means the supplier uses the defaults as-is.
type RatingConfiguration struct {
	ID         uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID          `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex"`
	Areas      types.AreaSettings `gorm:"column:areas;type:jsonb;not null"`
	UpdatedBy  uuid.UUID          `gorm:"column:updated_by;type:uuid;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
