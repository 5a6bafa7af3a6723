package ratings

import (
	"time"

	"github.com/google/uuid"
)

// ConfigurationDTO is the resolved rating configuration for one supplier.
// Configured is false when no stored override exists and the areas are the
// catalog defaults verbatim.
type ConfigurationDTO struct {
	SupplierID uuid.UUID  `json:"supplier_id"`
	Areas      []Area     `json:"areas"`
	Configured bool       `json:"configured"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// AreaSettingInput is one area's admin-controlled knobs on save.
type AreaSettingInput struct {
	ID      string  `json:"id" validate:"required"`
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
}

// SaveConfigurationInput carries the full area set for an upsert. Saves
// always replace the stored configuration wholesale.
type SaveConfigurationInput struct {
	Areas []AreaSettingInput `json:"areas" validate:"required,min=1,dive"`
}

// SubmitInput is one school's scores for a supplier. Scores replace any
// prior submission by the same rater in full.
type SubmitInput struct {
	Scores   map[string]int `json:"scores" validate:"required"`
	Feedback *string        `json:"feedback,omitempty"`
}

// AreaAverage is the per-area slice of the aggregation view.
type AreaAverage struct {
	AreaID  string  `json:"area_id"`
	Name    string  `json:"name"`
	Average float64 `json:"average"`
	Weight  float64 `json:"weight"`
	Count   int     `json:"count"`
}

// SummaryDTO is the school-facing aggregation for one supplier. HasRatings
// distinguishes a genuine 0.0 score from the no-ratings state.
type SummaryDTO struct {
	SupplierID uuid.UUID     `json:"supplier_id"`
	Areas      []AreaAverage `json:"areas"`
	Overall    float64       `json:"overall"`
	Count      int           `json:"count"`
	HasRatings bool          `json:"has_ratings"`
}

// Overview is the compact aggregate attached to supplier list cards.
type Overview struct {
	Overall float64 `json:"overall"`
	Count   int     `json:"count"`
}
