package models

import "time"

// Report is a user's complaint about a post, at most one per (user, post).
type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_report_user_post;not null" json:"user_id"`
	PostID    uint      `gorm:"uniqueIndex:idx_report_user_post;index;not null" json:"post_id"`
	Reason    string    `gorm:"size:512;not null" json:"reason"`
	Category  string    `gorm:"size:64;not null" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
