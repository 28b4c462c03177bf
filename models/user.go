package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on User.Role and carried in token claims.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// DefaultAvatarURL is served when a user never uploaded a picture.
const DefaultAvatarURL = "/defaultUserImage.webp"

// User represents an account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:32;uniqueIndex;not null" json:"username"`
	DisplayName  string         `gorm:"size:32" json:"display_name"`
	Bio          string         `gorm:"size:320" json:"bio"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:16;default:'USER';not null" json:"role"`
	BannedUntil  *time.Time     `json:"banned_until"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Posts        []Post         `json:"-"`
}

// BeforeCreate hook ensures timestamps and the default role are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsBanned reports whether the account is currently locked out.
func (u *User) IsBanned() bool {
	return u.BannedUntil != nil && u.BannedUntil.After(time.Now())
}

// Avatar returns the stored avatar URL or the default image path.
func (u *User) Avatar() string {
	if u.AvatarURL == "" {
		return DefaultAvatarURL
	}
	return u.AvatarURL
}
