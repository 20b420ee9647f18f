package model

import "time"

// Friendship status values. There is no accepted→waiting transition.
const (
	FriendshipWaiting  = 0
	FriendshipAccepted = 1
)

// Friendship is one directed edge of the social graph: "UserID considers
// FriendID a friend with this status". A mutual friendship is two accepted
// edges, one in each direction. A pending request is a single waiting edge
// stored from the recipient's perspective (UserID = recipient), so a user's
// inbox of requests to act on is just their outgoing waiting edges.
// At most one edge exists per ordered (UserID, FriendID) pair.
type Friendship struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:idx_friendship_pair;not null" json:"user_id"`
	FriendID  int64     `gorm:"index:idx_friendship_pair;not null" json:"friend_id"`
	Status    int       `gorm:"default:0" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
