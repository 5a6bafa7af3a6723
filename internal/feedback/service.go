package feedback

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
)

// FeedbackDTO is one free-form comment left on a supplier.
type FeedbackDTO struct {
	ID         uuid.UUID `json:"id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmitInput is the feedback body.
type SubmitInput struct {
	Body string `json:"body" validate:"required,max=4000"`
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error)
}

// Repository handles supplier feedback persistence.
type Repository interface {
	Create(ctx context.Context, feedback *models.SupplierFeedback) error
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierFeedback, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to feedback operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, feedback *models.SupplierFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierFeedback, error) {
	var rows []models.SupplierFeedback
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Service exposes supplier feedback submission and listing.
type Service interface {
	Submit(ctx context.Context, supplierID, authorID uuid.UUID, input SubmitInput) (*FeedbackDTO, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]FeedbackDTO, error)
}

type service struct {
	repo      Repository
	suppliers supplierReader
}

// NewService builds the feedback service.
func NewService(repo Repository, suppliers supplierReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	return &service{repo: repo, suppliers: suppliers}, nil
}

func (s *service) Submit(ctx context.Context, supplierID, authorID uuid.UUID, input SubmitInput) (*FeedbackDTO, error) {
	if authorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback body required")
	}

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Status != enums.SupplierStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	feedback := &models.SupplierFeedback{
		SupplierID: supplierID,
		AuthorID:   authorID,
		Body:       body,
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create feedback")
	}
	return fromModel(feedback), nil
}

func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]FeedbackDTO, error) {
	rows, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feedback")
	}
	dtos := make([]FeedbackDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *fromModel(&rows[i]))
	}
	return dtos, nil
}

func fromModel(m *models.SupplierFeedback) *FeedbackDTO {
	return &FeedbackDTO{
		ID:         m.ID,
		SupplierID: m.SupplierID,
		AuthorID:   m.AuthorID,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}
