package post

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

type CommentView struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	PostID         int64     `json:"post_id"`
	UserID         int64     `json:"user_id"`
	Body           string    `json:"body"`
	AuthorUsername string    `json:"author_username"`
	AuthorAvatar   string    `json:"author_avatar"`
}

func postExists(c *gin.Context, postID int64) (bool, error) {
	var count int64
	err := database.DB.WithContext(c.Request.Context()).Model(&Post{}).Where("id = ?", postID).Count(&count).Error
	return count > 0, err
}

// GetComments récupère les commentaires d'un post, du plus ancien au plus récent
func GetComments(c *gin.Context) {
	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	exists, err := postExists(c, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du post"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	comments := []CommentView{}
	err = database.DB.WithContext(c.Request.Context()).
		Table("comments c").
		Select("c.id, c.created_at, c.post_id, c.user_id, c.body, u.username AS author_username, u.avatar_url AS author_avatar").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.post_id = ?", postID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&comments).Error
	if err != nil {
		logs.LogJSON("ERROR", "Error listing comments", map[string]interface{}{
			"postID": postID,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des commentaires"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment ajoute un nouveau commentaire
func CreateComment(c *gin.Context) {
	p, _ := session.Current(c)

	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le commentaire est vide"})
		return
	}

	exists, err := postExists(c, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du post"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	comment := Comment{
		PostID: postID,
		UserID: p.ID,
		Body:   strings.TrimSpace(input.Body),
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&comment).Error; err != nil {
		logs.LogJSON("ERROR", "Error creating comment", map[string]interface{}{
			"userID": p.ID,
			"postID": postID,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du commentaire"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Commentaire ajouté avec succès",
		"comment": comment,
	})
}

// DeleteComment supprime un commentaire (auteur ou admin)
func DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	commentID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commentaire invalide"})
		return
	}

	var comment Comment
	if err := database.DB.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commentaire non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du commentaire"})
		return
	}

	allowed, err := user.OwnerOrAdmin(ctx, database.DB, p, comment.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification des droits"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous n'êtes pas autorisé à supprimer ce commentaire"})
		return
	}

	if err := database.DB.WithContext(ctx).Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du commentaire"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commentaire supprimé avec succès"})
}
