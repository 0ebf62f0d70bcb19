package models

import (
	"time"
)

// Comment is always scoped to a post that existed at creation time.
// Soft-deleted like Post.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;index:idx_comments_post_date,priority:1" json:"post_id"`
	Nickname     string    `gorm:"size:64;not null" json:"nickname"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Edited       bool      `gorm:"not null;default:false" json:"edited"`
	Deleted      bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `gorm:"index:idx_comments_post_date,priority:2" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
