package models

import "time"

// Follow is a directed edge from a follower to the account they follow.
// Self-follows are rejected in the handler; duplicates by the unique index.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"uniqueIndex:idx_follow_pair;index;not null" json:"follower_id"`
	FollowingID uint      `gorm:"uniqueIndex:idx_follow_pair;index;not null" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
