package repository

import (
	"context"
	"time"

	"lifeboard/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat message persistence
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	HistoryBefore(ctx context.Context, before time.Time, limit int) ([]*models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// HistoryBefore returns the newest messages at or before the given timestamp,
// newest first, for reverse-chronological infinite scroll.
func (r *chatRepository) HistoryBefore(ctx context.Context, before time.Time, limit int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("created_at <= ?", before).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
