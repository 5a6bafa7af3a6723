package complaints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
)

// Repository handles legal complaint persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, complaint *models.LegalComplaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.LegalComplaint, error)
	Update(ctx context.Context, complaint *models.LegalComplaint) error
	ListByFiler(ctx context.Context, filerID uuid.UUID) ([]models.LegalComplaint, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.LegalComplaint, error)
	List(ctx context.Context, input AdminListInput) ([]models.LegalComplaint, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to complaint operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, complaint *models.LegalComplaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LegalComplaint, error) {
	var complaint models.LegalComplaint
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&complaint).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *repository) Update(ctx context.Context, complaint *models.LegalComplaint) error {
	if complaint == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Save(complaint).Error
}

func (r *repository) ListByFiler(ctx context.Context, filerID uuid.UUID) ([]models.LegalComplaint, error) {
	var rows []models.LegalComplaint
	err := r.db.WithContext(ctx).
		Where("filer_id = ?", filerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.LegalComplaint, error) {
	var rows []models.LegalComplaint
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, input AdminListInput) ([]models.LegalComplaint, string, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)

	qb := r.db.WithContext(ctx).Model(&models.LegalComplaint{})
	if input.Status != nil {
		qb = qb.Where("status = ?", *input.Status)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.LegalComplaint
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
