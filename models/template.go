package models

import "time"

// Template is a reusable rich-text post draft owned by a single user.
type Template struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:32;not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxTemplatesPerUser caps how many templates one user may keep.
const MaxTemplatesPerUser = 25
