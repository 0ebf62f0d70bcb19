// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Category is immutable reference data describing a board section.
// Categories are seeded administratively and never deleted in normal flow.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:32;not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"size:32;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
