package bookmark

import "time"

type Bookmark struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_bookmarks_user_post"`
	PostID    int64     `json:"post_id" gorm:"not null;uniqueIndex:idx_bookmarks_user_post;index"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
