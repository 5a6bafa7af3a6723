package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/schoolbridge/schoolbridge-backend/pkg/db"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
)

const previewRuneLimit = 120

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error)
}

// Service exposes the school/supplier messaging thread operations.
type Service interface {
	StartConversation(ctx context.Context, schoolID uuid.UUID, input StartInput) (*ConversationDTO, error)
	ListConversations(ctx context.Context, participant Participant) ([]ConversationDTO, error)
	ListMessages(ctx context.Context, participant Participant, input ListMessagesInput) (*MessageListResult, error)
	Send(ctx context.Context, participant Participant, conversationID uuid.UUID, input SendInput) (*MessageDTO, error)
	MarkRead(ctx context.Context, participant Participant, conversationID uuid.UUID) error
}

type service struct {
	repo      Repository
	suppliers supplierReader
	tx        txRunner
	outbox    outboxPublisher
}

// NewService builds the messaging service with the provided dependencies.
func NewService(repo Repository, suppliers supplierReader, tx txRunner, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messaging repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, suppliers: suppliers, tx: tx, outbox: ob}, nil
}

// StartConversation returns the existing thread for the pair or creates it.
// Only approved suppliers can be contacted.
func (s *service) StartConversation(ctx context.Context, schoolID uuid.UUID, input StartInput) (*ConversationDTO, error) {
	if schoolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}

	supplier, err := s.suppliers.FindByID(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Status != enums.SupplierStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	existing, err := s.repo.FindConversationByPair(ctx, schoolID, input.SupplierID)
	if err == nil {
		dto := conversationFromModel(existing, 0)
		return &dto, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}

	conversation := &models.Conversation{
		SchoolID:      schoolID,
		SupplierID:    input.SupplierID,
		LastMessageAt: time.Now().UTC(),
	}
	if err := s.repo.CreateConversation(ctx, conversation); err != nil {
		// Two tabs racing on first contact: the pair index wins, reload.
		if dbpkg.IsUniqueViolation(err, "idx_conversation_pair") {
			existing, err := s.repo.FindConversationByPair(ctx, schoolID, input.SupplierID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
			}
			dto := conversationFromModel(existing, 0)
			return &dto, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
	}
	dto := conversationFromModel(conversation, 0)
	return &dto, nil
}

func (s *service) ListConversations(ctx context.Context, participant Participant) ([]ConversationDTO, error) {
	var rows []models.Conversation
	var err error
	switch {
	case participant.Role == enums.UserRoleSchool:
		rows, err = s.repo.ListConversationsForSchool(ctx, participant.UserID)
	case participant.Role == enums.UserRoleSupplier && participant.SupplierID != nil:
		rows, err = s.repo.ListConversationsForSupplier(ctx, *participant.SupplierID)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "messaging requires a school or supplier account")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	unread, err := s.repo.UnreadCounts(ctx, ids, participant.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}

	dtos := make([]ConversationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, conversationFromModel(&rows[i], unread[rows[i].ID]))
	}
	return dtos, nil
}

func (s *service) ListMessages(ctx context.Context, participant Participant, input ListMessagesInput) (*MessageListResult, error) {
	if _, err := s.authorize(ctx, participant, input.ConversationID); err != nil {
		return nil, err
	}

	rows, nextCursor, err := s.repo.ListMessages(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	messages := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		messages = append(messages, messageFromModel(&rows[i]))
	}
	return &MessageListResult{Messages: messages, NextCursor: nextCursor}, nil
}

func (s *service) Send(ctx context.Context, participant Participant, conversationID uuid.UUID, input SendInput) (*MessageDTO, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}

	conversation, err := s.authorize(ctx, participant, conversationID)
	if err != nil {
		return nil, err
	}

	recipientID, err := s.recipientFor(ctx, participant, conversation)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       participant.UserID,
		Body:           body,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
		}
		if err := repo.TouchLastMessage(ctx, conversation.ID, time.Now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update conversation")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMessageSent,
			AggregateType: enums.AggregateConversation,
			AggregateID:   conversation.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:     participant.UserID,
				SupplierID: participant.SupplierID,
				Role:       string(participant.Role),
			},
			Data: payloads.MessageSentEvent{
				ConversationID: conversation.ID,
				MessageID:      message.ID,
				SenderID:       participant.UserID,
				RecipientID:    recipientID,
				Preview:        preview(body),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	dto := messageFromModel(message)
	return &dto, nil
}

func (s *service) MarkRead(ctx context.Context, participant Participant, conversationID uuid.UUID) error {
	if _, err := s.authorize(ctx, participant, conversationID); err != nil {
		return err
	}
	if _, err := s.repo.MarkRead(ctx, conversationID, participant.UserID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}
	return nil
}

func (s *service) authorize(ctx context.Context, participant Participant, conversationID uuid.UUID) (*models.Conversation, error) {
	if conversationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation id required")
	}
	conversation, err := s.repo.FindConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}

	switch {
	case participant.Role == enums.UserRoleSchool && conversation.SchoolID == participant.UserID:
		return conversation, nil
	case participant.Role == enums.UserRoleSupplier && participant.SupplierID != nil && conversation.SupplierID == *participant.SupplierID:
		return conversation, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this conversation")
	}
}

func (s *service) recipientFor(ctx context.Context, participant Participant, conversation *models.Conversation) (uuid.UUID, error) {
	if participant.Role == enums.UserRoleSupplier {
		return conversation.SchoolID, nil
	}
	supplier, err := s.suppliers.FindByID(ctx, conversation.SupplierID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier.OwnerID, nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewRuneLimit {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewRuneLimit])
}
