package forum

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/feed"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

// GetForums GET /api/forums, les plus actifs en premier
func GetForums(c *gin.Context) {
	_, limit, offset := utils.ParsePage(c)

	query := database.DB.WithContext(c.Request.Context()).
		Model(&Forum{}).
		Select("forums.*, (SELECT COUNT(*) FROM forum_messages m WHERE m.forum_id = forums.id AND m.is_deleted = false) AS message_count")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	forums := []ForumResponse{}
	err := query.
		Order("COALESCE(last_message_at, created_at) DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&forums).Error
	if err != nil {
		logs.LogJSON("ERROR", "Error listing forums", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des forums"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"forums": forums})
}

// CreateForum POST /api/forums
func CreateForum(c *gin.Context) {
	p, _ := session.Current(c)

	var input CreateForumInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le titre est obligatoire"})
		return
	}

	forum := Forum{
		CreatorID:   p.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
	}
	if forum.Category == "" {
		forum.Category = feed.SentinelCategory
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&forum).Error; err != nil {
		logs.LogJSON("ERROR", "Error creating forum", map[string]interface{}{
			"error":  err.Error(),
			"userID": p.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du forum"})
		return
	}

	logs.LogJSON("INFO", "Forum created", map[string]interface{}{
		"forumID": forum.ID,
		"userID":  p.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"forum": forum})
}

// DeleteForum DELETE /api/forums/:id (admin)
func DeleteForum(c *gin.Context) {
	p, _ := session.Current(c)

	forumID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de forum invalide"})
		return
	}

	var deleted int64
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("forum_id = ?", forumID).Delete(&Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Forum{}, forumID)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		logs.LogJSON("ERROR", "Error deleting forum", map[string]interface{}{
			"error":   err.Error(),
			"forumID": forumID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du forum"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Forum non trouvé"})
		return
	}

	logs.LogJSON("INFO", "Forum deleted", map[string]interface{}{
		"forumID": forumID,
		"userID":  p.ID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Forum supprimé"})
}

func loadForum(c *gin.Context) (Forum, bool) {
	var forum Forum
	forumID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de forum invalide"})
		return forum, false
	}

	if err := database.DB.WithContext(c.Request.Context()).First(&forum, forumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Forum non trouvé"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du forum"})
		}
		return forum, false
	}
	return forum, true
}

// GetForumMessages GET /api/forums/:id/messages, du plus ancien au plus récent
func GetForumMessages(c *gin.Context) {
	forum, ok := loadForum(c)
	if !ok {
		return
	}
	_, limit, offset := utils.ParsePage(c)

	var messages []Message
	if err := database.DB.WithContext(c.Request.Context()).
		Where("forum_id = ? AND is_deleted = false", forum.ID).
		Preload("Sender").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des messages"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, toResponse(msg))
	}

	c.JSON(http.StatusOK, gin.H{"forum": forum, "messages": response})
}

// PostForumMessage POST /api/forums/:id/messages
func PostForumMessage(c *gin.Context) {
	p, _ := session.Current(c)

	forum, ok := loadForum(c)
	if !ok {
		return
	}

	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le message est vide"})
		return
	}

	msg := Message{
		ForumID:  forum.ID,
		SenderID: p.ID,
		Body:     strings.TrimSpace(input.Body),
	}
	db := database.DB.WithContext(c.Request.Context())
	if err := db.Create(&msg).Error; err != nil {
		logs.LogJSON("ERROR", "Error posting forum message", map[string]interface{}{
			"error":   err.Error(),
			"forumID": forum.ID,
			"userID":  p.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du message"})
		return
	}

	// Sert uniquement au tri de la liste des forums.
	if err := db.Model(&Forum{}).Where("id = ?", forum.ID).Update("last_message_at", msg.CreatedAt).Error; err != nil {
		logs.LogJSON("WARN", "Forum activity not updated", map[string]interface{}{
			"error":   err.Error(),
			"forumID": forum.ID,
		})
	}

	if err := db.First(&msg.Sender, p.ID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logs.LogJSON("WARN", "Sender not loaded", map[string]interface{}{
			"error":  err.Error(),
			"userID": p.ID,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"message": toResponse(msg)})
}

// DeleteForumMessage DELETE /api/forums/messages/:id (auteur ou admin)
func DeleteForumMessage(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	messageID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de message invalide"})
		return
	}

	var msg Message
	if err := database.DB.WithContext(ctx).
		Where("id = ? AND is_deleted = false", messageID).
		First(&msg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message non trouvé"})
		return
	}

	allowed, err := user.OwnerOrAdmin(ctx, database.DB, p, msg.SenderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification des droits"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous n'êtes pas autorisé à supprimer ce message"})
		return
	}

	now := time.Now()
	if err := database.DB.WithContext(ctx).Model(&msg).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message supprimé"})
}

func toResponse(msg Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		CreatedAt: msg.CreatedAt,
		ForumID:   msg.ForumID,
		Sender: user.Summary{
			ID:        msg.Sender.ID,
			Username:  msg.Sender.Username,
			AvatarURL: msg.Sender.AvatarURL,
			City:      msg.Sender.City,
		},
		Body: msg.Body,
	}
}
