package user

import (
	"time"

	"github.com/campusnet/CampusFeed-Back/internal/session"
)

type User struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Username     string       `gorm:"uniqueIndex;not null" json:"username"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Firstname    string       `json:"firstname"`
	Lastname     string       `json:"lastname"`
	Bio          string       `json:"bio"`
	AvatarURL    string       `json:"avatar_url"`
	City         string       `gorm:"not null;default:''" json:"city"`
	Role         session.Role `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
}
