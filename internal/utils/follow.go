package utils

import (
	"context"

	"gorm.io/gorm"
)

// IsFollowing indique si followerID suit followedID.
func IsFollowing(ctx context.Context, db *gorm.DB, followerID, followedID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("follows").
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
