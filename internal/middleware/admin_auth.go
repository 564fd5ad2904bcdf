package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

// AdminOnly protège les routes d'administration. Le rôle du jeton est
// ignoré : seul le rôle en base compte.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		p, ok := session.Current(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
			logs.LogJSON("WARN", "Non-authenticated user tried admin route", map[string]interface{}{
				"route": route,
			})
			return
		}
		if p.IsGuest() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
			logs.LogJSON("WARN", "Guest blocked from admin route", map[string]interface{}{
				"route": route,
			})
			return
		}

		isAdmin, err := user.IsAdmin(c.Request.Context(), database.DB, p.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification admin"})
			logs.LogJSON("ERROR", "Admin check failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": p.ID,
			})
			return
		}

		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
			logs.LogJSON("WARN", "Non-admin user blocked from admin route", map[string]interface{}{
				"route":  route,
				"userID": p.ID,
			})
			return
		}

		c.Next()
	}
}
