package outbox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"gorm.io/gorm"
)

const (
	// Error messages are clipped so a pathological driver error cannot
	// bloat the dead-letter table.
	maxDLQErrorLen = 1024

	defaultDLQListLimit = 50
)

// DLQRepository persists outbox rows that exhausted their retries or failed
// to decode. Rows here are only ever inspected by operators.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// InsertTx writes the dead-letter entry inside the caller's transaction so
// it commits atomically with the terminal mark on the source row.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil && len(*entry.ErrorMessage) > maxDLQErrorLen {
		clipped := (*entry.ErrorMessage)[:maxDLQErrorLen]
		entry.ErrorMessage = &clipped
	}
	return tx.Create(&entry).Error
}

// FindByEventID returns the dead-letter entry for a source event, or nil.
func (r *DLQRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var entry models.OutboxDLQ
	switch err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&entry).Error; {
	case err == nil:
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

// List returns the most recent dead-letter entries.
func (r *DLQRepository) List(ctx context.Context, limit int) ([]models.OutboxDLQ, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = defaultDLQListLimit
	}
	var rows []models.OutboxDLQ
	err := r.db.WithContext(ctx).
		Order("failed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
