package complaints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error)
}

// Service exposes the legal complaint workflow.
type Service interface {
	File(ctx context.Context, filerID uuid.UUID, input FileInput) (*ComplaintDTO, error)
	ListByFiler(ctx context.Context, filerID uuid.UUID) ([]ComplaintDTO, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ComplaintDTO, error)
	AdminList(ctx context.Context, input AdminListInput) (*ListResult, error)
	Transition(ctx context.Context, input TransitionInput) (*ComplaintDTO, error)
}

type service struct {
	repo      Repository
	suppliers supplierReader
	tx        txRunner
	outbox    outboxPublisher
}

// NewService builds the complaint service with the provided dependencies.
func NewService(repo Repository, suppliers supplierReader, tx txRunner, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("complaints repository required")
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

func (s *service) File(ctx context.Context, filerID uuid.UUID, input FileInput) (*ComplaintDTO, error) {
	if filerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Body)
	if subject == "" || body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject and body are required")
	}

	supplier, err := s.suppliers.FindByID(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}

	complaint := &models.LegalComplaint{
		SupplierID: supplier.ID,
		FilerID:    filerID,
		Subject:    subject,
		Body:       body,
		Status:     enums.ComplaintStatusOpen,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, complaint); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create complaint")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventComplaintFiled,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   complaint.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: filerID,
				Role:   string(enums.UserRoleSchool),
			},
			Data: payloads.ComplaintFiledEvent{
				ComplaintID:     complaint.ID,
				SupplierID:      supplier.ID,
				SupplierOwnerID: supplier.OwnerID,
				FilerID:         filerID,
				Subject:         subject,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(complaint), nil
}

func (s *service) ListByFiler(ctx context.Context, filerID uuid.UUID) ([]ComplaintDTO, error) {
	rows, err := s.repo.ListByFiler(ctx, filerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	return toDTOs(rows), nil
}

func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ComplaintDTO, error) {
	rows, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	return toDTOs(rows), nil
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*ListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, nextCursor, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	return &ListResult{Complaints: toDTOs(rows), NextCursor: nextCursor}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*ComplaintDTO, error) {
	if input.ComplaintID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "complaint id required")
	}
	if input.AdminUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	target, err := enums.ParseComplaintStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	var complaint *models.LegalComplaint
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, input.ComplaintID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load complaint")
		}
		if !loaded.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move complaint from %s to %s", loaded.Status, target))
		}

		supplier, err := s.suppliers.FindByID(ctx, loaded.SupplierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}

		fromStatus := loaded.Status
		loaded.Status = target
		if target == enums.ComplaintStatusResolved || target == enums.ComplaintStatusDismissed {
			now := time.Now().UTC()
			loaded.Resolution = input.Resolution
			loaded.ResolvedBy = &input.AdminUserID
			loaded.ResolvedAt = &now
		}
		if err := repo.Update(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update complaint")
		}

		resolution := ""
		if input.Resolution != nil {
			resolution = *input.Resolution
		}
		complaint = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventComplaintStatusMoved,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: input.AdminUserID,
				Role:   string(enums.UserRoleAdmin),
			},
			Data: payloads.ComplaintStatusMovedEvent{
				ComplaintID:     loaded.ID,
				SupplierID:      loaded.SupplierID,
				SupplierOwnerID: supplier.OwnerID,
				FilerID:         loaded.FilerID,
				FromStatus:      fromStatus,
				ToStatus:        target,
				Resolution:      resolution,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(complaint), nil
}

func toDTOs(rows []models.LegalComplaint) []ComplaintDTO {
	dtos := make([]ComplaintDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
