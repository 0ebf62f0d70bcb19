package models

import (
	"time"
)

// Post represents a board post. Deletion is a flag flip, never a row
// removal: the row has to stay around so upload cleanup and moderation
// tooling can still see it.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClientReqID *string   `gorm:"size:36;uniqueIndex" json:"client_req_id,omitempty"`
	CategoryID  uint      `gorm:"not null;index:idx_posts_cat_date,priority:1" json:"-"`
	Category    Category  `gorm:"foreignKey:CategoryID" json:"category"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorNick  string    `gorm:"size:64;not null" json:"author_nick"`
	// AuthorID is kept for wire compatibility with older clients; it carries
	// no authority. Password verification is the only mutation gate.
	AuthorID     string `gorm:"size:64;not null;default:anon" json:"author_id"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Views        int    `gorm:"not null;default:0" json:"views"`
	Likes        int    `gorm:"not null;default:0" json:"likes"`
	Edited       bool   `gorm:"not null;default:false" json:"edited"`
	Deleted      bool   `gorm:"not null;default:false;index" json:"-"`
	// CommentCount is not persisted; computed at query time
	CommentCount int       `gorm:"-" json:"comment_count"`
	CreatedAt    time.Time `gorm:"index:idx_posts_cat_date,priority:2;index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
