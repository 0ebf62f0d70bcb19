// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"lifeboard/internal/cache"
	"lifeboard/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category reference data.
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByCode(ctx context.Context, code string) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := cache.Aside(ctx, cache.CategoriesListKey, &categories, cache.CategoriesTTL, func() error {
		return r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error
	})
	return categories, err
}

func (r *categoryRepository) GetByCode(ctx context.Context, code string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
