package like

import (
	"time"
)

type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_post"`
	PostID    int64     `json:"post_id" gorm:"not null;uniqueIndex:idx_likes_user_post;index"`
}

type LikeResponse struct {
	PostID    int64 `json:"post_id"`
	LikeCount int64 `json:"like_count"`
	IsLiked   bool  `json:"is_liked"`
}

func (Like) TableName() string {
	return "likes"
}
