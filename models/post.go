package models

import "time"

// Post represents a microblog post created by a user.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// PostLike marks that a user liked a post. The composite unique index is the
// source of truth for the one-like-per-user invariant.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_post_like_user_post;not null" json:"user_id"`
	PostID    uint      `gorm:"uniqueIndex:idx_post_like_user_post;index;not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
