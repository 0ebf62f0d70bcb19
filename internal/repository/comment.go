package repository

import (
	"context"

	"lifeboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	CountActiveByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int, error)
	Update(ctx context.Context, comment *models.Comment) error
	SoftDelete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID returns the comment regardless of its deleted flag; callers decide
// whether a soft-deleted row counts as missing.
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND deleted = ?", postID, false).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// CountActiveByPostIDs returns active comment counts grouped by post id in a
// single query. Posts without comments are simply absent from the map.
func (r *commentRepository) CountActiveByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		N      int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) as n").
		Where("post_id IN ? AND deleted = ?", postIDs, false).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PostID] = row.N
	}
	return counts, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("deleted", true).Error
}
