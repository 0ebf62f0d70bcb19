package repository

import (
	"context"
	"strings"
	"time"

	"lifeboard/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows list queries to a category and/or search term.
// A nil CategoryID and empty Query mean no filtering.
type PostFilter struct {
	CategoryID *uint
	Query      string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByClientReqID(ctx context.Context, clientReqID string) (*models.Post, error)
	Latest(ctx context.Context, f PostFilter, limit, offset int) ([]*models.Post, error)
	Since(ctx context.Context, f PostFilter, since time.Time, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SoftDelete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	IncrementLikes(ctx context.Context, id uint) (int, error)
	DecrementLikes(ctx context.Context, id uint) (int, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID returns the post regardless of its deleted flag; callers decide
// whether a soft-deleted row counts as missing.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Category").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByClientReqID(ctx context.Context, clientReqID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("client_req_id = ?", clientReqID).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Latest(ctx context.Context, f PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Since(ctx context.Context, f PostFilter, since time.Time, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Where("created_at >= ?", since).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// applyFilter restricts to non-deleted posts and applies category/search filters.
// LOWER(...) LIKE keeps the title match case-insensitive across drivers.
func (r *postRepository) applyFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	q := db.Model(&models.Post{}).
		Preload("Category").
		Where("deleted = ?", false)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR content LIKE ?", like, "%"+f.Query+"%")
	}
	return q
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("deleted", true).Error
}

// IncrementViews bumps the view counter with a single atomic UPDATE so
// concurrent reads never lose increments.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND deleted = ?", id, false).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *postRepository) IncrementLikes(ctx context.Context, id uint) (int, error) {
	return r.adjustLikes(ctx, id, gorm.Expr("likes + 1"))
}

// DecrementLikes floors at zero inside the UPDATE itself; the store, not the
// application, is the arbiter under concurrent unlikes.
func (r *postRepository) DecrementLikes(ctx context.Context, id uint) (int, error) {
	return r.adjustLikes(ctx, id, gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END"))
}

func (r *postRepository) adjustLikes(ctx context.Context, id uint, expr any) (int, error) {
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND deleted = ?", id, false).
			UpdateColumn("likes", expr)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Post{}).
			Select("likes").
			Where("id = ?", id).
			Scan(&likes).Error
	})
	return likes, err
}
