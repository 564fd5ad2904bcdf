package follow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

// FollowUser POST /api/follow/:id
func FollowUser(c *gin.Context) {
	route := c.FullPath()
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	followedID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	if p.ID == followedID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de se suivre soi-même"})
		logs.LogJSON("WARN", "Impossible to follow yourself", map[string]interface{}{
			"route":  route,
			"userID": p.ID,
		})
		return
	}

	exists, err := user.Exists(ctx, database.DB, followedID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	newFollow := Follow{FollowerID: p.ID, FollowedID: followedID}
	if err := database.DB.WithContext(ctx).Create(&newFollow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Déjà suivi"})
			logs.LogJSON("WARN", "Already followed", map[string]interface{}{
				"route":      route,
				"userID":     p.ID,
				"followedID": followedID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout du follow"})
		logs.LogJSON("ERROR", "Error adding follow", map[string]interface{}{
			"error":      err.Error(),
			"route":      route,
			"userID":     p.ID,
			"followedID": followedID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Utilisateur suivi"})
	logs.LogJSON("INFO", "Followed user", map[string]interface{}{
		"route":      route,
		"userID":     p.ID,
		"followedID": followedID,
	})
}

// UnfollowUser DELETE /api/follow/:id
func UnfollowUser(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)

	followedID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).
		Where("follower_id = ? AND followed_id = ?", p.ID, followedID).
		Delete(&Follow{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur unfollow"})
		logs.LogJSON("ERROR", "Error unfollow", map[string]interface{}{
			"error":      err.Error(),
			"route":      route,
			"userID":     p.ID,
			"followedID": followedID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur unfollow"})
	logs.LogJSON("INFO", "User unfollow", map[string]interface{}{
		"route":      route,
		"userID":     p.ID,
		"followedID": followedID,
	})
}

func listUsers(c *gin.Context, joinOn, whereCol string, id int64) ([]user.Summary, error) {
	users := []user.Summary{}
	err := database.DB.WithContext(c.Request.Context()).
		Table("follows f").
		Select("u.id, u.username, u.avatar_url, u.city").
		Joins("JOIN users u ON u.id = f."+joinOn).
		Where("f."+whereCol+" = ?", id).
		Order("f.created_at DESC").
		Scan(&users).Error
	return users, err
}

// GetFollowing GET /api/following
func GetFollowing(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)

	users, err := listUsers(c, "followed_id", "follower_id", p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération des utilisateurs suivis"})
		logs.LogJSON("ERROR", "Error retrieving followed users", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": p.ID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": users})
}

// GetFollowers GET /api/followers/:id
func GetFollowers(c *gin.Context) {
	route := c.FullPath()

	userID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	users, err := listUsers(c, "follower_id", "followed_id", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération followers"})
		logs.LogJSON("ERROR", "Error recovering followers", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": users})
}
