package models

import "time"

// Hashtag is a normalized lowercase topic tag. Rows are created lazily on
// first use and never deleted.
type Hashtag struct {
	Name      string    `gorm:"primaryKey;size:32" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PostHashtag associates a post with a hashtag. The association set of a post
// is always exactly the set extracted from its current content.
type PostHashtag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"uniqueIndex:idx_post_hashtag;index;not null" json:"post_id"`
	HashtagName string    `gorm:"uniqueIndex:idx_post_hashtag;index;size:32;not null" json:"hashtag_name"`
	CreatedAt   time.Time `json:"created_at"`
}
