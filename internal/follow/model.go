package follow

import (
	"time"
)

// Follow : FollowerID suit FollowedID. Une seule arête par couple.
type Follow struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID int64     `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowedID int64     `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followed_id"`
}
