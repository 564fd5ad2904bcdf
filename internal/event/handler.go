package event

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusnet/CampusFeed-Back/internal/apperr"
	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/feed"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

var now = time.Now

// GetEvents GET /api/events. Par défaut les événements à venir, le plus proche
// en premier ; past=true liste les événements passés, le plus récent en premier.
func GetEvents(c *gin.Context) {
	_, limit, offset := utils.ParsePage(c)

	viewerID := int64(session.GuestID)
	if p, ok := session.Current(c); ok && !p.IsGuest() {
		viewerID = p.ID
	}

	query := database.DB.WithContext(c.Request.Context()).
		Table("events e").
		Select(`e.*, u.username AS creator_username,
			(SELECT COUNT(*) FROM event_participants ep WHERE ep.event_id = e.id) AS participant_count,
			EXISTS (SELECT 1 FROM event_participants jp WHERE jp.event_id = e.id AND jp.user_id = ?) AS joined`, viewerID).
		Joins("JOIN users u ON u.id = e.creator_id")

	if c.Query("past") == "true" {
		query = query.Where("e.starts_at < ?", now()).Order("e.starts_at DESC, e.id DESC")
	} else {
		query = query.Where("e.starts_at >= ?", now()).Order("e.starts_at ASC, e.id ASC")
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("e.category = ?", category)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("e.city = ?", city)
	}

	events := []EventView{}
	if err := query.Limit(limit).Offset(offset).Scan(&events).Error; err != nil {
		logs.LogJSON("ERROR", "Error listing events", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des événements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent POST /api/events
func CreateEvent(c *gin.Context) {
	p, _ := session.Current(c)

	var input CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	switch {
	case input.Title == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le titre est obligatoire"})
		return
	case !input.StartsAt.After(now()):
		c.JSON(http.StatusBadRequest, gin.H{"error": "La date de début doit être dans le futur"})
		return
	case input.EndsAt != nil && !input.EndsAt.After(input.StartsAt):
		c.JSON(http.StatusBadRequest, gin.H{"error": "La date de fin doit suivre la date de début"})
		return
	case input.Capacity < 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Capacité invalide"})
		return
	}

	evt := Event{
		CreatorID:   p.ID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		City:        strings.TrimSpace(input.City),
		Category:    strings.TrimSpace(input.Category),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Capacity:    input.Capacity,
	}
	if evt.Category == "" {
		evt.Category = feed.SentinelCategory
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&evt).Error; err != nil {
		logs.LogJSON("ERROR", "Error creating event", map[string]interface{}{
			"error":  err.Error(),
			"userID": p.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de l'événement"})
		return
	}

	logs.LogJSON("INFO", "Event created", map[string]interface{}{
		"eventID": evt.ID,
		"userID":  p.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"event": evt})
}

func loadEvent(c *gin.Context) (Event, bool) {
	var evt Event
	eventID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'événement invalide"})
		return evt, false
	}

	if err := database.DB.WithContext(c.Request.Context()).First(&evt, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Événement non trouvé"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération de l'événement"})
		}
		return evt, false
	}
	return evt, true
}

// DeleteEvent DELETE /api/events/:id (créateur ou admin)
func DeleteEvent(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	evt, ok := loadEvent(c)
	if !ok {
		return
	}

	allowed, err := user.OwnerOrAdmin(ctx, database.DB, p, evt.CreatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification des droits"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous n'êtes pas autorisé à supprimer cet événement"})
		return
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", evt.ID).Delete(&Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&evt).Error
	})
	if err != nil {
		logs.LogJSON("ERROR", "Error deleting event", map[string]interface{}{
			"error":   err.Error(),
			"eventID": evt.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression de l'événement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Événement supprimé"})
}

var errEventFull = fmt.Errorf("%w: event full", apperr.ErrConflict)

// join verrouille la ligne de l'événement le temps du comptage et de
// l'insertion, les inscriptions concurrentes au même événement passent
// donc l'une après l'autre.
func join(tx *gorm.DB, eventID, userID int64) error {
	var evt Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&evt, eventID).Error
	if err != nil {
		return apperr.FromGorm(err, "lock event")
	}

	if evt.Capacity > 0 {
		var count int64
		if err := tx.Model(&Participant{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return apperr.FromGorm(err, "count participants")
		}
		if count >= int64(evt.Capacity) {
			return errEventFull
		}
	}

	return apperr.FromGorm(tx.Create(&Participant{EventID: eventID, UserID: userID}).Error, "join event")
}

// JoinEvent POST /api/events/:id/join
func JoinEvent(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	evt, ok := loadEvent(c)
	if !ok {
		return
	}
	if evt.StartsAt.Before(now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Événement déjà commencé"})
		return
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return join(tx, evt.ID, p.ID)
	})
	if err != nil {
		switch {
		case errors.Is(err, errEventFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Événement complet"})
			return
		case errors.Is(err, apperr.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Déjà inscrit"})
			return
		case errors.Is(err, apperr.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Événement non trouvé"})
			return
		}
		logs.LogJSON("ERROR", "Error joining event", map[string]interface{}{
			"error":   err.Error(),
			"eventID": evt.ID,
			"userID":  p.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'inscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Inscription enregistrée"})
}

// LeaveEvent DELETE /api/events/:id/join
func LeaveEvent(c *gin.Context) {
	p, _ := session.Current(c)

	evt, ok := loadEvent(c)
	if !ok {
		return
	}

	res := database.DB.WithContext(c.Request.Context()).
		Where("event_id = ? AND user_id = ?", evt.ID, p.ID).
		Delete(&Participant{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la désinscription"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vous n'êtes pas inscrit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Désinscription enregistrée"})
}

// GetParticipants GET /api/events/:id/participants
func GetParticipants(c *gin.Context) {
	evt, ok := loadEvent(c)
	if !ok {
		return
	}

	participants := []user.Summary{}
	err := database.DB.WithContext(c.Request.Context()).
		Table("event_participants ep").
		Select("u.id, u.username, u.avatar_url, u.city").
		Joins("JOIN users u ON u.id = ep.user_id").
		Where("ep.event_id = ?", evt.ID).
		Order("ep.created_at ASC").
		Scan(&participants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}
