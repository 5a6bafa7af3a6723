package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RatingScores maps rating area IDs to 1-5 star values, persisted as JSONB
// on rating submissions.
type RatingScores map[string]int

// Value marshals the map into JSON for Postgres.
func (r RatingScores) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (r *RatingScores) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("rating scores: unsupported scan type %T", value)
	}

	result := make(RatingScores)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*r = result
	return nil
}

// AreaSetting captures the admin-controlled knobs for one rating area.
type AreaSetting struct {
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
}

// AreaSettings maps rating area IDs to their per-supplier overrides,
// persisted as JSONB on rating configurations.
type AreaSettings map[string]AreaSetting

// Value marshals the map into JSON for Postgres.
func (a AreaSettings) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (a *AreaSettings) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("area settings: unsupported scan type %T", value)
	}

	result := make(AreaSettings)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*a = result
	return nil
}
