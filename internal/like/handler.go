package like

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

// PostExists est partagé avec les favoris.
func PostExists(ctx context.Context, db *gorm.DB, postID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Table("posts").Where("id = ?", postID).Count(&count).Error
	return count > 0, err
}

// ToggleLike POST /api/posts/:id/like
func ToggleLike(c *gin.Context) {
	route := c.FullPath()
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	exists, err := PostExists(ctx, database.DB, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		logs.LogJSON("ERROR", "Database error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": p.ID,
			"postID": postID,
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	// Un like existant est retiré, sinon il est créé.
	res := database.DB.WithContext(ctx).Where("user_id = ? AND post_id = ?", p.ID, postID).Delete(&Like{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du like"})
		logs.LogJSON("ERROR", "Error when unliking", map[string]interface{}{
			"error":  res.Error.Error(),
			"route":  route,
			"userID": p.ID,
			"postID": postID,
		})
		return
	}
	if res.RowsAffected == 0 {
		err := database.DB.WithContext(ctx).Create(&Like{UserID: p.ID, PostID: postID}).Error
		// Double clic concurrent : l'index unique a déjà enregistré le like.
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'ajout du like"})
			logs.LogJSON("ERROR", "Error when liking", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": p.ID,
				"postID": postID,
			})
			return
		}
	}

	status, err := getLikeStatus(ctx, postID, p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetLikeStatus GET /api/posts/:id/likes
func GetLikeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	exists, err := PostExists(ctx, database.DB, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	viewer, ok := session.Current(c)
	if !ok {
		viewer = session.Guest()
	}
	status, err := getLikeStatus(ctx, postID, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func getLikeStatus(ctx context.Context, postID int64, viewer session.Principal) (LikeResponse, error) {
	resp := LikeResponse{PostID: postID}
	db := database.DB.WithContext(ctx)

	if err := db.Model(&Like{}).Where("post_id = ?", postID).Count(&resp.LikeCount).Error; err != nil {
		return resp, err
	}
	if viewer.IsGuest() {
		return resp, nil
	}

	var mine int64
	if err := db.Model(&Like{}).Where("user_id = ? AND post_id = ?", viewer.ID, postID).Count(&mine).Error; err != nil {
		return resp, err
	}
	resp.IsLiked = mine > 0
	return resp, nil
}
