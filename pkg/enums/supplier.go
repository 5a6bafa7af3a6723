package enums

import "fmt"

// SupplierType discriminates the service-details schema carried by a
// supplier application. Maps to the supplier_type enum in Postgres.
type SupplierType string

const (
	SupplierTypeEdTech     SupplierType = "edtech"
	SupplierTypeCurriculum SupplierType = "curriculum"
	SupplierTypeFurniture  SupplierType = "furniture"
	SupplierTypeTransport  SupplierType = "transport"
	SupplierTypeStaffing   SupplierType = "staffing"
)

var validSupplierTypes = []SupplierType{
	SupplierTypeEdTech,
	SupplierTypeCurriculum,
	SupplierTypeFurniture,
	SupplierTypeTransport,
	SupplierTypeStaffing,
}

// String implements fmt.Stringer.
func (s SupplierType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierType.
func (s SupplierType) IsValid() bool {
	for _, candidate := range validSupplierTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupplierType converts raw input into a SupplierType.
func ParseSupplierType(value string) (SupplierType, error) {
	for _, candidate := range validSupplierTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier type %q", value)
}

// SupplierStatus captures the application vetting workflow.
type SupplierStatus string

const (
	SupplierStatusPending  SupplierStatus = "pending"
	SupplierStatusApproved SupplierStatus = "approved"
	SupplierStatusRejected SupplierStatus = "rejected"
	SupplierStatusWaiting  SupplierStatus = "waiting"
)

var validSupplierStatuses = []SupplierStatus{
	SupplierStatusPending,
	SupplierStatusApproved,
	SupplierStatusRejected,
	SupplierStatusWaiting,
}

// String implements fmt.Stringer.
func (s SupplierStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the supplier_status enum.
func (s SupplierStatus) IsValid() bool {
	for _, candidate := range validSupplierStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupplierStatus converts raw input into a SupplierStatus.
func ParseSupplierStatus(value string) (SupplierStatus, error) {
	for _, candidate := range validSupplierStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier status %q", value)
}

// CanTransitionTo reports whether an admin decision may move an application
// from its current status to the target status. Pending applications can be
// approved, rejected, or waitlisted; waitlisted applications can still be
// approved or rejected. Approved and rejected are terminal.
func (s SupplierStatus) CanTransitionTo(target SupplierStatus) bool {
	switch s {
	case SupplierStatusPending:
		return target == SupplierStatusApproved || target == SupplierStatusRejected || target == SupplierStatusWaiting
	case SupplierStatusWaiting:
		return target == SupplierStatusApproved || target == SupplierStatusRejected
	default:
		return false
	}
}
