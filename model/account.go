package model

import "time"

// DefaultAvatarURL is assigned to every account on registration.
const DefaultAvatarURL = "/static/img/avatar-placeholder.png"

// Account represents a registered user.
type Account struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	PasswordHash string    `gorm:"size:64;not null" json:"-"`
	AvatarURL    string    `gorm:"size:255" json:"avatar_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
