package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

// RatingSubmission is one school's scores for one supplier. The unique pair
// index enforces at most one live submission per rater; resubmitting replaces
// the scores map wholesale.
type RatingSubmission struct {
	ID         uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID          `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_rating_supplier_rater"`
	RaterID    uuid.UUID          `gorm:"column:rater_id;type:uuid;not null;uniqueIndex:idx_rating_supplier_rater"`
	Scores     types.RatingScores `gorm:"column:scores;type:jsonb;not null"`
	Feedback   *string            `gorm:"column:feedback"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
