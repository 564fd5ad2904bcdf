package bookmark

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/feed"
	"github.com/campusnet/CampusFeed-Back/internal/like"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

// ToggleBookmark POST /api/posts/:id/bookmark
func ToggleBookmark(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	exists, err := like.PostExists(ctx, database.DB, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	res := database.DB.WithContext(ctx).Where("user_id = ? AND post_id = ?", p.ID, postID).Delete(&Bookmark{})
	if res.Error != nil {
		logs.LogJSON("ERROR", "Error removing bookmark", map[string]interface{}{
			"error":  res.Error.Error(),
			"userID": p.ID,
			"postID": postID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du favori"})
		return
	}
	if res.RowsAffected > 0 {
		c.JSON(http.StatusOK, gin.H{"post_id": postID, "bookmarked": false})
		return
	}

	err = database.DB.WithContext(ctx).Create(&Bookmark{UserID: p.ID, PostID: postID}).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		logs.LogJSON("ERROR", "Error adding bookmark", map[string]interface{}{
			"error":  err.Error(),
			"userID": p.ID,
			"postID": postID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'ajout du favori"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "bookmarked": true})
}

// ListBookmarks GET /api/bookmarks
func ListBookmarks(c *gin.Context) {
	p, _ := session.Current(c)
	_, limit, offset := utils.ParsePage(c)

	items, err := feed.Bookmarks(c.Request.Context(), database.DB, p, limit, offset)
	if err != nil {
		logs.LogJSON("ERROR", "Error listing bookmarks", map[string]interface{}{
			"error":  err.Error(),
			"userID": p.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des favoris"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items})
}
