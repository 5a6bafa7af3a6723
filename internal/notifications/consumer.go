package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/idempotency"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/registry"
)

const notificationConsumer = "in-app-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns published domain events into in-app notification rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		decoders:     newPayloadDecoders(),
		logg:         logg,
	}, nil
}

func newPayloadDecoders() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.EventSupplierStatusChanged, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.SupplierStatusChangedEvent
		return data, json.Unmarshal(payload, &data)
	})
	decoders.Register(enums.EventRatingSubmitted, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.RatingSubmittedEvent
		return data, json.Unmarshal(payload, &data)
	})
	decoders.Register(enums.EventMessageSent, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.MessageSentEvent
		return data, json.Unmarshal(payload, &data)
	})
	decoders.Register(enums.EventComplaintFiled, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.ComplaintFiledEvent
		return data, json.Unmarshal(payload, &data)
	})
	decoders.Register(enums.EventComplaintStatusMoved, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.ComplaintStatusMovedEvent
		return data, json.Unmarshal(payload, &data)
	})
	return decoders
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	payload, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		// Events without a registered decoder carry no notification.
		c.logg.Info(logCtx, "event not handled")
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handlePayload(ctx, payload); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handlePayload(ctx context.Context, payload interface{}) error {
	notifications, err := buildNotifications(payload)
	if err != nil {
		return err
	}
	for i := range notifications {
		if err := c.repo.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

// buildNotifications maps one decoded event to the notification rows it
// produces. An empty slice means the event needs no notification.
func buildNotifications(payload interface{}) ([]models.Notification, error) {
	switch data := payload.(type) {
	case payloads.SupplierStatusChangedEvent:
		return supplierStatusNotifications(data)
	case payloads.RatingSubmittedEvent:
		return ratingNotifications(data)
	case payloads.MessageSentEvent:
		return messageNotifications(data)
	case payloads.ComplaintFiledEvent:
		return complaintFiledNotifications(data)
	case payloads.ComplaintStatusMovedEvent:
		return complaintStatusNotifications(data)
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}

func supplierStatusNotifications(data payloads.SupplierStatusChangedEvent) ([]models.Notification, error) {
	if data.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("owner id missing")
	}
	title := "Application updated"
	message := fmt.Sprintf("Your application moved to %s.", data.ToStatus)
	switch data.ToStatus {
	case enums.SupplierStatusApproved:
		title = "Application approved"
		message = "Your supplier application has been approved. Schools can now find you in the directory."
	case enums.SupplierStatusRejected:
		title = "Application rejected"
		message = "Your supplier application was rejected."
	case enums.SupplierStatusWaiting:
		title = "Application waitlisted"
		message = "Your supplier application was placed on the waiting list."
	}
	if note := strings.TrimSpace(data.DecisionNote); note != "" {
		message = fmt.Sprintf("%s Note from the review team: %s", message, note)
	}
	return []models.Notification{{
		UserID:  data.OwnerID,
		Type:    enums.NotificationTypeApplicationUpdate,
		Title:   title,
		Message: message,
		Link:    stringPtr("/supplier/application"),
	}}, nil
}

func ratingNotifications(data payloads.RatingSubmittedEvent) ([]models.Notification, error) {
	if data.SupplierOwnerID == uuid.Nil {
		return nil, fmt.Errorf("supplier owner id missing")
	}
	message := fmt.Sprintf("A school rated your services. Your overall score is now %.1f.", data.OverallScore)
	if data.Replaced {
		message = fmt.Sprintf("A school updated its rating of your services. Your overall score is now %.1f.", data.OverallScore)
	}
	return []models.Notification{{
		UserID:  data.SupplierOwnerID,
		Type:    enums.NotificationTypeNewRating,
		Title:   "New rating received",
		Message: message,
		Link:    stringPtr(fmt.Sprintf("/suppliers/%s/ratings", data.SupplierID)),
	}}, nil
}

func messageNotifications(data payloads.MessageSentEvent) ([]models.Notification, error) {
	if data.RecipientID == uuid.Nil {
		return nil, fmt.Errorf("recipient id missing")
	}
	message := "You have a new message."
	if preview := strings.TrimSpace(data.Preview); preview != "" {
		message = fmt.Sprintf("New message: %s", preview)
	}
	return []models.Notification{{
		UserID:  data.RecipientID,
		Type:    enums.NotificationTypeNewMessage,
		Title:   "New message",
		Message: message,
		Link:    stringPtr(fmt.Sprintf("/messages/%s", data.ConversationID)),
	}}, nil
}

func complaintFiledNotifications(data payloads.ComplaintFiledEvent) ([]models.Notification, error) {
	if data.SupplierOwnerID == uuid.Nil {
		return nil, fmt.Errorf("supplier owner id missing")
	}
	return []models.Notification{{
		UserID:  data.SupplierOwnerID,
		Type:    enums.NotificationTypeComplaintUpdate,
		Title:   "Complaint filed",
		Message: fmt.Sprintf("A school filed a complaint: %s", data.Subject),
		Link:    stringPtr(fmt.Sprintf("/complaints/%s", data.ComplaintID)),
	}}, nil
}

// Complaint lifecycle moves notify both sides of the dispute.
func complaintStatusNotifications(data payloads.ComplaintStatusMovedEvent) ([]models.Notification, error) {
	if data.SupplierOwnerID == uuid.Nil || data.FilerID == uuid.Nil {
		return nil, fmt.Errorf("complaint participants missing")
	}
	message := fmt.Sprintf("Complaint status changed from %s to %s.", data.FromStatus, data.ToStatus)
	if resolution := strings.TrimSpace(data.Resolution); resolution != "" {
		message = fmt.Sprintf("%s Resolution: %s", message, resolution)
	}
	link := stringPtr(fmt.Sprintf("/complaints/%s", data.ComplaintID))
	return []models.Notification{
		{
			UserID:  data.SupplierOwnerID,
			Type:    enums.NotificationTypeComplaintUpdate,
			Title:   "Complaint updated",
			Message: message,
			Link:    link,
		},
		{
			UserID:  data.FilerID,
			Type:    enums.NotificationTypeComplaintUpdate,
			Title:   "Complaint updated",
			Message: message,
			Link:    link,
		},
	}, nil
}

func stringPtr(value string) *string {
	return &value
}
