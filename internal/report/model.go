package report

import (
	"time"

	"github.com/campusnet/CampusFeed-Back/internal/forum"
	"github.com/campusnet/CampusFeed-Back/internal/post"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

// ReportType est la nature de l'élément signalé.
type ReportType string

const (
	ReportTypePost         ReportType = "post"
	ReportTypeUser         ReportType = "user"
	ReportTypeComment      ReportType = "comment"
	ReportTypeForumMessage ReportType = "forum_message"
)

type ReportReason string

const (
	ReasonInappropriateContent ReportReason = "inappropriate_content"
	ReasonSpam                 ReportReason = "spam"
	ReasonHarassment           ReportReason = "harassment"
	ReasonHateSpeech           ReportReason = "hate_speech"
	ReasonImpersonation        ReportReason = "impersonation"
	ReasonMisinformation       ReportReason = "misinformation"
	ReasonOther                ReportReason = "other"
)

// ReportStatus suit le traitement par un admin.
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusReviewed ReportStatus = "reviewed"
	StatusResolved ReportStatus = "resolved"
	StatusRejected ReportStatus = "rejected"
)

type Report struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReporterID int64        `json:"reporter_id" gorm:"index;not null"`
	Reporter   user.Summary `json:"reporter" gorm:"-"`

	TargetType ReportType `json:"target_type" gorm:"index"`
	TargetID   int64      `json:"target_id" gorm:"index"`

	Reason      ReportReason `json:"reason"`
	Description string       `json:"description" gorm:"type:text"`

	Status     ReportStatus `json:"status" gorm:"default:'pending';index"`
	AdminID    *int64       `json:"admin_id,omitempty"`
	AdminNote  string       `json:"admin_note" gorm:"type:text"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

type CreateReportInput struct {
	TargetType  ReportType   `json:"target_type" binding:"required"`
	TargetID    int64        `json:"target_id" binding:"required"`
	Reason      ReportReason `json:"reason" binding:"required"`
	Description string       `json:"description"`
}

type UpdateReportInput struct {
	Status    ReportStatus `json:"status" binding:"required"`
	AdminNote string       `json:"admin_note"`
}

// ReportWithTarget porte au plus une cible renseignée, selon TargetType.
type ReportWithTarget struct {
	Report
	TargetPost         *post.Post     `json:"target_post,omitempty"`
	TargetUser         *user.Summary  `json:"target_user,omitempty"`
	TargetComment      *post.Comment  `json:"target_comment,omitempty"`
	TargetForumMessage *forum.Message `json:"target_forum_message,omitempty"`
}

func (s ReportStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved, StatusRejected:
		return true
	default:
		return false
	}
}

func (r ReportReason) IsValid() bool {
	switch r {
	case ReasonInappropriateContent, ReasonSpam, ReasonHarassment, ReasonHateSpeech,
		ReasonImpersonation, ReasonMisinformation, ReasonOther:
		return true
	default:
		return false
	}
}

func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypePost, ReportTypeUser, ReportTypeComment, ReportTypeForumMessage:
		return true
	default:
		return false
	}
}

// problem retourne le message d'erreur client, vide si l'entrée est valide.
func (in CreateReportInput) problem() string {
	switch {
	case !in.TargetType.IsValid():
		return "Type de signalement invalide"
	case !in.Reason.IsValid():
		return "Raison de signalement invalide"
	case in.TargetID <= 0:
		return "Cible invalide"
	}
	return ""
}
