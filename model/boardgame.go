package model

import "time"

// Boardgame is one catalog entry. Every entry belongs to exactly one
// account; ownership never transfers.
type Boardgame struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    int64     `gorm:"index:idx_boardgame_owner;not null" json:"owner_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	ImgURL     string    `gorm:"size:1024" json:"img_url"`
	Year       int       `json:"year"`
	Level      int       `json:"level"`
	MinPlayers int       `json:"min_players"`
	MaxPlayers int       `json:"max_players"`
	PlayTime   string    `gorm:"size:64" json:"play_time"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
