package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
)

// Repository handles conversation and message persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	FindConversationByPair(ctx context.Context, schoolID, supplierID uuid.UUID) (*models.Conversation, error)
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	ListConversationsForSchool(ctx context.Context, schoolID uuid.UUID) ([]models.Conversation, error)
	ListConversationsForSupplier(ctx context.Context, supplierID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	TouchLastMessage(ctx context.Context, conversationID uuid.UUID, at time.Time) error
	ListMessages(ctx context.Context, input ListMessagesInput) ([]models.Message, string, error)
	UnreadCounts(ctx context.Context, conversationIDs []uuid.UUID, viewerID uuid.UUID) (map[uuid.UUID]int64, error)
	MarkRead(ctx context.Context, conversationID, viewerID uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to messaging operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repository) FindConversationByPair(ctx context.Context, schoolID, supplierID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND supplier_id = ?", schoolID, supplierID).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *repository) ListConversationsForSchool(ctx context.Context, schoolID uuid.UUID) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("last_message_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListConversationsForSupplier(ctx context.Context, supplierID uuid.UUID) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("last_message_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) TouchLastMessage(ctx context.Context, conversationID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", at).Error
}

func (r *repository) ListMessages(ctx context.Context, input ListMessagesInput) ([]models.Message, string, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Where("conversation_id = ?", input.ConversationID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Message
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

// UnreadCounts returns, per conversation, how many messages the viewer has
// not read yet. Messages the viewer sent are never counted.
func (r *repository) UnreadCounts(ctx context.Context, conversationIDs []uuid.UUID, viewerID uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	type unreadRow struct {
		ConversationID uuid.UUID
		Count          int64
	}
	var rows []unreadRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id", "COUNT(*) AS count").
		Where("conversation_id IN ?", conversationIDs).
		Where("sender_id <> ?", viewerID).
		Where("read_at IS NULL").
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}
	return counts, nil
}

func (r *repository) MarkRead(ctx context.Context, conversationID, viewerID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("sender_id <> ?", viewerID).
		Where("read_at IS NULL").
		Update("read_at", at)
	return result.RowsAffected, result.Error
}
