package forum

import (
	"time"

	"github.com/campusnet/CampusFeed-Back/internal/user"
)

// Forum est un fil de discussion public ouvert par un membre.
type Forum struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatorID     int64      `json:"creator_id" gorm:"index;not null"`
	Title         string     `json:"title" gorm:"not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Category      string     `json:"category" gorm:"not null;default:'general'"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

// Message est une contribution à un forum. La suppression est logique.
type Message struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"created_at"`
	ForumID   int64      `json:"forum_id" gorm:"index;not null"`
	SenderID  int64      `json:"sender_id" gorm:"index;not null"`
	Sender    user.User  `json:"-" gorm:"foreignKey:SenderID"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	IsDeleted bool       `json:"is_deleted" gorm:"default:false"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Message) TableName() string {
	return "forum_messages"
}

type CreateForumInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type CreateMessageInput struct {
	Body string `json:"body" binding:"required"`
}

// ForumResponse ajoute le nombre de messages visibles.
type ForumResponse struct {
	Forum
	MessageCount int64 `json:"message_count"`
}

type MessageResponse struct {
	ID        int64        `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	ForumID   int64        `json:"forum_id"`
	Sender    user.Summary `json:"sender"`
	Body      string       `json:"body"`
}
