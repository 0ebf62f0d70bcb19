package models

import (
	"time"
)

// ChatMessage is an append-only record of the shared chat channel.
// IDs are opaque client- or server-generated UUID strings.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID  string    `gorm:"size:64;not null;index" json:"sender"`
	Nickname  string    `gorm:"size:64;not null" json:"nickname"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
