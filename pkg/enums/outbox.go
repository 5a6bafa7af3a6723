package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSupplier     OutboxAggregateType = "supplier_application"
	AggregateRating       OutboxAggregateType = "rating_submission"
	AggregateConversation OutboxAggregateType = "conversation"
	AggregateComplaint    OutboxAggregateType = "legal_complaint"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSupplier,
	AggregateRating,
	AggregateConversation,
	AggregateComplaint,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSupplierSubmitted     OutboxEventType = "supplier_submitted"
	EventSupplierStatusChanged OutboxEventType = "supplier_status_changed"
	EventRatingSubmitted       OutboxEventType = "rating_submitted"
	EventMessageSent           OutboxEventType = "message_sent"
	EventComplaintFiled        OutboxEventType = "complaint_filed"
	EventComplaintStatusMoved  OutboxEventType = "complaint_status_moved"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSupplierSubmitted,
	EventSupplierStatusChanged,
	EventRatingSubmitted,
	EventMessageSent,
	EventComplaintFiled,
	EventComplaintStatusMoved,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
