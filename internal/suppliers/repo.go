package suppliers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
)

// Repository handles supplier application persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, app *models.SupplierApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.SupplierApplication, error)
	Update(ctx context.Context, app *models.SupplierApplication) error
	ListApproved(ctx context.Context, input ListInput) ([]models.SupplierApplication, string, error)
	ListByStatus(ctx context.Context, input AdminListInput) ([]models.SupplierApplication, string, error)
	ListByStatusBefore(ctx context.Context, statuses []enums.SupplierStatus, cutoff time.Time) ([]models.SupplierApplication, error)
	CountByStatus(ctx context.Context) (map[enums.SupplierStatus]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to supplier application operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, app *models.SupplierApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error) {
	var app models.SupplierApplication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.SupplierApplication, error) {
	var app models.SupplierApplication
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) Update(ctx context.Context, app *models.SupplierApplication) error {
	if app == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Save(app).Error
}

// ListApproved pages approved applications for the school-facing browse
// endpoint. Every populated filter narrows the result set; text filters
// match case-insensitively.
func (r *repository) ListApproved(ctx context.Context, input ListInput) ([]models.SupplierApplication, string, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.SupplierApplication{}).
		Where("status = ?", enums.SupplierStatusApproved)

	filters := input.Filters
	if city := strings.TrimSpace(filters.City); city != "" {
		qb = qb.Where("LOWER(city) = LOWER(?)", city)
	}
	if state := strings.TrimSpace(filters.State); state != "" {
		qb = qb.Where("LOWER(state) = LOWER(?)", state)
	}
	if filters.SupplierType != "" {
		qb = qb.Where("supplier_type = ?", filters.SupplierType)
	}
	if filters.PaymentMode != "" {
		qb = qb.Where("? = ANY(payment_modes)", filters.PaymentMode)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(company_name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", pattern, pattern)
	}

	return r.page(qb, input.Pagination)
}

// ListByStatus pages applications in a given vetting state for admin review.
func (r *repository) ListByStatus(ctx context.Context, input AdminListInput) ([]models.SupplierApplication, string, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.SupplierApplication{}).
		Where("status = ?", input.Status)
	return r.page(qb, input.Pagination)
}

func (r *repository) page(qb *gorm.DB, params pagination.Params) ([]models.SupplierApplication, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SupplierApplication
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
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

// CountByStatus returns the review-queue sizes keyed by vetting status.
// ListByStatusBefore returns applications still in one of the given statuses
// that were submitted before the cutoff. Used by the review reminder cron.
func (r *repository) ListByStatusBefore(ctx context.Context, statuses []enums.SupplierStatus, cutoff time.Time) ([]models.SupplierApplication, error) {
	var rows []models.SupplierApplication
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.SupplierStatus]int64, error) {
	type statusCount struct {
		Status enums.SupplierStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.SupplierApplication{}).
		Select("status", "COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.SupplierStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
