package ratings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
)

// Repository handles rating configuration and submission persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindConfiguration(ctx context.Context, supplierID uuid.UUID) (*models.RatingConfiguration, error)
	SaveConfiguration(ctx context.Context, cfg *models.RatingConfiguration) error
	DeleteConfiguration(ctx context.Context, supplierID uuid.UUID) error
	FindSubmission(ctx context.Context, supplierID, raterID uuid.UUID) (*models.RatingSubmission, error)
	SaveSubmission(ctx context.Context, submission *models.RatingSubmission) error
	ListSubmissions(ctx context.Context, supplierID uuid.UUID) ([]models.RatingSubmission, error)
	ListSubmissionsForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) ([]models.RatingSubmission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to rating operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindConfiguration(ctx context.Context, supplierID uuid.UUID) (*models.RatingConfiguration, error) {
	var cfg models.RatingConfiguration
	if err := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfiguration creates the row on first save and replaces it afterwards.
func (r *repository) SaveConfiguration(ctx context.Context, cfg *models.RatingConfiguration) error {
	if cfg.ID == uuid.Nil {
		return r.db.WithContext(ctx).Create(cfg).Error
	}
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *repository) DeleteConfiguration(ctx context.Context, supplierID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Delete(&models.RatingConfiguration{}).Error
}

func (r *repository) FindSubmission(ctx context.Context, supplierID, raterID uuid.UUID) (*models.RatingSubmission, error) {
	var submission models.RatingSubmission
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND rater_id = ?", supplierID, raterID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repository) SaveSubmission(ctx context.Context, submission *models.RatingSubmission) error {
	if submission.ID == uuid.Nil {
		return r.db.WithContext(ctx).Create(submission).Error
	}
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *repository) ListSubmissions(ctx context.Context, supplierID uuid.UUID) ([]models.RatingSubmission, error) {
	var rows []models.RatingSubmission
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListSubmissionsForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) ([]models.RatingSubmission, error) {
	if len(supplierIDs) == 0 {
		return nil, nil
	}
	var rows []models.RatingSubmission
	err := r.db.WithContext(ctx).
		Where("supplier_id IN ?", supplierIDs).
		Find(&rows).Error
	return rows, err
}
