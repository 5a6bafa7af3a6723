package enums

import "fmt"

// ComplaintStatus captures the legal-complaint review workflow.
type ComplaintStatus string

const (
	ComplaintStatusOpen        ComplaintStatus = "open"
	ComplaintStatusUnderReview ComplaintStatus = "under_review"
	ComplaintStatusResolved    ComplaintStatus = "resolved"
	ComplaintStatusDismissed   ComplaintStatus = "dismissed"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusOpen,
	ComplaintStatusUnderReview,
	ComplaintStatusResolved,
	ComplaintStatusDismissed,
}

// String implements fmt.Stringer.
func (c ComplaintStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the complaint_status enum.
func (c ComplaintStatus) IsValid() bool {
	for _, candidate := range validComplaintStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseComplaintStatus converts raw input into a ComplaintStatus.
func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	for _, candidate := range validComplaintStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint status %q", value)
}

// CanTransitionTo reports whether an admin may move a complaint between
// review states. Open complaints move to review; reviewed complaints settle.
func (c ComplaintStatus) CanTransitionTo(target ComplaintStatus) bool {
	switch c {
	case ComplaintStatusOpen:
		return target == ComplaintStatusUnderReview || target == ComplaintStatusDismissed
	case ComplaintStatusUnderReview:
		return target == ComplaintStatusResolved || target == ComplaintStatusDismissed
	default:
		return false
	}
}
