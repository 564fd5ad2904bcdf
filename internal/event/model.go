package event

import (
	"time"
)

type Event struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatorID   int64      `json:"creator_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	Location    string     `json:"location"`
	City        string     `json:"city" gorm:"not null;default:''"`
	Category    string     `json:"category" gorm:"not null;default:'general'"`
	StartsAt    time.Time  `json:"starts_at" gorm:"index;not null"`
	EndsAt      *time.Time `json:"ends_at"`
	// 0 : pas de limite
	Capacity int `json:"capacity" gorm:"not null;default:0"`
}

type Participant struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	EventID   int64     `json:"event_id" gorm:"not null;uniqueIndex:idx_event_participant"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_event_participant;index"`
}

func (Participant) TableName() string {
	return "event_participants"
}

type CreateEventInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	City        string     `json:"city"`
	Category    string     `json:"category"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    int        `json:"capacity"`
}

// EventView est une ligne de la liste des événements.
type EventView struct {
	Event
	CreatorUsername  string `json:"creator_username"`
	ParticipantCount int64  `json:"participant_count"`
	Joined           bool   `json:"joined"`
}
