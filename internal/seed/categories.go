// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"lifeboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategory is a permanent board category.
type BuiltInCategory struct {
	Code string
	Name string
}

// BuiltInCategories defines the permanent board categories.
var BuiltInCategories = []BuiltInCategory{
	{Code: "free", Name: "General"},
	{Code: "question", Name: "Questions"},
	{Code: "info", Name: "Tips & Info"},
	{Code: "market", Name: "Marketplace"},
	{Code: "meetup", Name: "Meetups"},
	{Code: "notice", Name: "Notices"},
}

// Categories upserts the built-in categories. Safe to run at every
// bootstrap; existing rows keep their IDs so posts never dangle.
func Categories(db *gorm.DB) error {
	for _, item := range BuiltInCategories {
		category := models.Category{
			Code: item.Code,
			Name: item.Name,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
