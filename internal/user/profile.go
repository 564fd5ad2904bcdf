package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

type Summary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	City      string `json:"city"`
}

// GetUser retourne le profil public avec les compteurs d'abonnements.
func GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	var user User
	if err := database.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
			return
		}
		logs.LogJSON("ERROR", "Error loading user", map[string]interface{}{
			"targetID": id,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	var followers, following, posts int64
	database.DB.WithContext(ctx).Table("follows").Where("followed_id = ?", id).Count(&followers)
	database.DB.WithContext(ctx).Table("follows").Where("follower_id = ?", id).Count(&following)
	database.DB.WithContext(ctx).Table("posts").Where("user_id = ?", id).Count(&posts)

	isFollowing := false
	if p, ok := session.Current(c); ok && !p.IsGuest() && p.ID != id {
		f, err := utils.IsFollowing(ctx, database.DB, p.ID, id)
		if err != nil {
			logs.LogJSON("WARN", "Follow status lookup failed", map[string]interface{}{
				"userID":   p.ID,
				"targetID": id,
				"error":    err.Error(),
			})
		}
		isFollowing = f
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"firstname":  user.Firstname,
			"lastname":   user.Lastname,
			"avatar_url": user.AvatarURL,
			"bio":        user.Bio,
			"city":       user.City,
			"created_at": user.CreatedAt,
		},
		"stats": gin.H{
			"followers_count": followers,
			"following_count": following,
			"posts_count":     posts,
		},
		"is_following": isFollowing,
	})
}

func SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La recherche doit contenir au moins 2 caractères"})
		return
	}

	var users []Summary
	pattern := "%" + strings.ToLower(q) + "%"
	err := database.DB.WithContext(c.Request.Context()).
		Model(&User{}).
		Select("id, username, avatar_url, city").
		Where("LOWER(username) LIKE ? OR LOWER(firstname) LIKE ? OR LOWER(lastname) LIKE ?", pattern, pattern, pattern).
		Order("username ASC").
		Limit(20).
		Scan(&users).Error
	if err != nil {
		logs.LogJSON("ERROR", "Error searching users", map[string]interface{}{
			"query": q,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche"})
		return
	}
	if users == nil {
		users = []Summary{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
