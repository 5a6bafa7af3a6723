package ratings

import "github.com/schoolbridge/schoolbridge-backend/pkg/types"

// Area is one rateable dimension of supplier quality.
type Area struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Enabled     bool    `json:"enabled"`
	Weight      float64 `json:"weight"`
}

// DefaultAreas returns the catalog used when a supplier has no stored
// configuration. Default weights sum to exactly 1.0.
func DefaultAreas() []Area {
	return []Area{
		{
			ID:          "reliability",
			Name:        "Reliability",
			Description: "Delivers on commitments and timelines",
			Enabled:     true,
			Weight:      0.25,
		},
		{
			ID:          "responsiveness",
			Name:        "Responsiveness",
			Description: "Speed and quality of communication",
			Enabled:     true,
			Weight:      0.20,
		},
		{
			ID:          "quality",
			Name:        "Quality",
			Description: "Quality of delivered goods or services",
			Enabled:     true,
			Weight:      0.25,
		},
		{
			ID:          "value",
			Name:        "Value",
			Description: "Pricing relative to what is delivered",
			Enabled:     true,
			Weight:      0.15,
		},
		{
			ID:          "support",
			Name:        "Support",
			Description: "Post-sale support and issue resolution",
			Enabled:     true,
			Weight:      0.15,
		},
	}
}

// Resolve applies a stored per-supplier override on top of the catalog
// defaults. It is a pure function: catalog order and display fields always
// come from defaults, enabled/weight from the override where present.
// Override entries for unknown area IDs are ignored.
func Resolve(override types.AreaSettings, defaults []Area) []Area {
	resolved := make([]Area, len(defaults))
	copy(resolved, defaults)
	if len(override) == 0 {
		return resolved
	}
	for i := range resolved {
		if setting, ok := override[resolved[i].ID]; ok {
			resolved[i].Enabled = setting.Enabled
			resolved[i].Weight = setting.Weight
		}
	}
	return resolved
}
