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
	"github.com/campusnet/CampusFeed-Back/internal/storage"
)

type updateMeInput struct {
	Username  *string `json:"username" form:"username"`
	Firstname *string `json:"firstname" form:"firstname"`
	Lastname  *string `json:"lastname" form:"lastname"`
	Bio       *string `json:"bio" form:"bio"`
	City      *string `json:"city" form:"city"`
	AvatarURL *string `json:"avatar_url" form:"avatar_url"`
}

func meResponse(u User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"firstname":  u.Firstname,
		"lastname":   u.Lastname,
		"avatar_url": u.AvatarURL,
		"bio":        u.Bio,
		"city":       u.City,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
}

func GetMe(c *gin.Context) {
	p, _ := session.Current(c)

	var user User
	if err := database.DB.WithContext(c.Request.Context()).First(&user, "id = ?", p.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": meResponse(user)})
}

func UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	var user User
	if err := database.DB.WithContext(ctx).First(&user, "id = ?", p.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	var input updateMeInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nom d'utilisateur invalide"})
			return
		}
		user.Username = username
	}
	if input.Firstname != nil {
		user.Firstname = *input.Firstname
	}
	if input.Lastname != nil {
		user.Lastname = *input.Lastname
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.City != nil {
		user.City = strings.TrimSpace(*input.City)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	// Remplacement éventuel de la photo envoyée en multipart
	file, header, err := c.Request.FormFile("profile_picture")
	if err == nil {
		defer file.Close()

		url, err := storage.Upload(ctx, "avatars", header.Filename, header.Header.Get("Content-Type"), file)
		switch {
		case errors.Is(err, storage.ErrMediaDisabled), errors.Is(err, storage.ErrInvalidExtension):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			logs.LogJSON("ERROR", "Avatar upload failed", map[string]interface{}{
				"userID": p.ID,
				"error":  err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload S3"})
			return
		}

		if err := storage.Remove(ctx, user.AvatarURL); err != nil {
			logs.LogJSON("WARN", "Old avatar not deleted", map[string]interface{}{
				"userID": p.ID,
				"error":  err.Error(),
			})
		}
		user.AvatarURL = url
	}

	if err := database.DB.WithContext(ctx).Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Nom d'utilisateur déjà pris"})
			return
		}
		logs.LogJSON("ERROR", "Error updating user", map[string]interface{}{
			"userID": p.ID,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour utilisateur"})
		return
	}

	logs.LogJSON("INFO", "Profile updated", map[string]interface{}{
		"userID": p.ID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour", "user": meResponse(user)})
}
