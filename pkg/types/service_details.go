package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
)

// EdTechDetails describes software/platform offerings.
type EdTechDetails struct {
	Platforms      []string `json:"platforms,omitempty"`
	DeploymentMode string   `json:"deployment_mode,omitempty"`
	SeatsIncluded  int      `json:"seats_included,omitempty"`
	TrialAvailable bool     `json:"trial_available,omitempty"`
}

// CurriculumDetails describes instructional content offerings.
type CurriculumDetails struct {
	Subjects      []string `json:"subjects,omitempty"`
	GradeLevels   []string `json:"grade_levels,omitempty"`
	Languages     []string `json:"languages,omitempty"`
	Accreditation string   `json:"accreditation,omitempty"`
}

// FurnitureDetails describes physical goods offerings.
type FurnitureDetails struct {
	Categories      []string `json:"categories,omitempty"`
	LeadTimeDays    int      `json:"lead_time_days,omitempty"`
	InstallIncluded bool     `json:"install_included,omitempty"`
	WarrantyMonths  int      `json:"warranty_months,omitempty"`
}

// TransportDetails describes student transport offerings.
type TransportDetails struct {
	FleetSize      int      `json:"fleet_size,omitempty"`
	Regions        []string `json:"regions,omitempty"`
	GPSTracking    bool     `json:"gps_tracking,omitempty"`
	DriverVetting  string   `json:"driver_vetting,omitempty"`
	SeatsPerPickup int      `json:"seats_per_pickup,omitempty"`
}

// StaffingDetails describes substitute/specialist staffing offerings.
type StaffingDetails struct {
	Specialties     []string `json:"specialties,omitempty"`
	BackgroundCheck bool     `json:"background_check,omitempty"`
	MinContractDays int      `json:"min_contract_days,omitempty"`
}

// ServiceDetails is a tagged union keyed by supplier type. Exactly one of the
// variant pointers is set, matching the Type tag; the rest stay nil. Stored
// as JSONB with a {"type": ..., "details": {...}} envelope.
type ServiceDetails struct {
	Type       enums.SupplierType
	EdTech     *EdTechDetails
	Curriculum *CurriculumDetails
	Furniture  *FurnitureDetails
	Transport  *TransportDetails
	Staffing   *StaffingDetails
}

type serviceDetailsEnvelope struct {
	Type    enums.SupplierType `json:"type"`
	Details json.RawMessage    `json:"details"`
}

// Validate checks the tag is known and the matching variant is populated.
func (d ServiceDetails) Validate() error {
	if !d.Type.IsValid() {
		return fmt.Errorf("service details: invalid supplier type %q", d.Type)
	}
	if d.variant() == nil {
		return fmt.Errorf("service details: missing %s details", d.Type)
	}
	return nil
}

func (d ServiceDetails) variant() any {
	switch d.Type {
	case enums.SupplierTypeEdTech:
		if d.EdTech != nil {
			return d.EdTech
		}
	case enums.SupplierTypeCurriculum:
		if d.Curriculum != nil {
			return d.Curriculum
		}
	case enums.SupplierTypeFurniture:
		if d.Furniture != nil {
			return d.Furniture
		}
	case enums.SupplierTypeTransport:
		if d.Transport != nil {
			return d.Transport
		}
	case enums.SupplierTypeStaffing:
		if d.Staffing != nil {
			return d.Staffing
		}
	}
	return nil
}

// MarshalJSON renders the discriminated envelope.
func (d ServiceDetails) MarshalJSON() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	details, err := json.Marshal(d.variant())
	if err != nil {
		return nil, err
	}
	return json.Marshal(serviceDetailsEnvelope{Type: d.Type, Details: details})
}

// UnmarshalJSON dispatches on the type tag into the matching variant.
func (d *ServiceDetails) UnmarshalJSON(data []byte) error {
	var envelope serviceDetailsEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if !envelope.Type.IsValid() {
		return fmt.Errorf("service details: invalid supplier type %q", envelope.Type)
	}

	out := ServiceDetails{Type: envelope.Type}
	raw := envelope.Details
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var err error
	switch envelope.Type {
	case enums.SupplierTypeEdTech:
		out.EdTech = &EdTechDetails{}
		err = json.Unmarshal(raw, out.EdTech)
	case enums.SupplierTypeCurriculum:
		out.Curriculum = &CurriculumDetails{}
		err = json.Unmarshal(raw, out.Curriculum)
	case enums.SupplierTypeFurniture:
		out.Furniture = &FurnitureDetails{}
		err = json.Unmarshal(raw, out.Furniture)
	case enums.SupplierTypeTransport:
		out.Transport = &TransportDetails{}
		err = json.Unmarshal(raw, out.Transport)
	case enums.SupplierTypeStaffing:
		out.Staffing = &StaffingDetails{}
		err = json.Unmarshal(raw, out.Staffing)
	}
	if err != nil {
		return err
	}
	*d = out
	return nil
}

// Value marshals the union into JSON for Postgres.
func (d ServiceDetails) Value() (driver.Value, error) {
	buf, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the union.
func (d *ServiceDetails) Scan(value interface{}) error {
	if value == nil {
		*d = ServiceDetails{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("service details: unsupported scan type %T", value)
	}
	return d.UnmarshalJSON(raw)
}
