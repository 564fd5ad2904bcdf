package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusnet/CampusFeed-Back/internal/apperr"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
)

// Auth exige un jeton valide : 401 sans jeton, 403 si le jeton est refusé.
func Auth(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			status := apperr.Status(err)
			if status == http.StatusUnauthorized {
				c.AbortWithStatusJSON(status, gin.H{"error": "Token requis"})
				return
			}
			logs.LogJSON("WARN", "Rejected token", map[string]interface{}{
				"route": c.FullPath(),
				"error": err.Error(),
			})
			c.AbortWithStatusJSON(status, gin.H{"error": "Token invalide"})
			return
		}

		session.Set(c, p)
		c.Next()
	}
}

// OptionalAuth enregistre le principal si le jeton est valide et laisse
// passer la requête dans tous les cas.
func OptionalAuth(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c.Request.Context(), c.Request)
		if err == nil {
			session.Set(c, p)
		} else if !errors.Is(err, session.ErrUnauthenticated) {
			logs.LogJSON("DEBUG", "Ignored invalid token", map[string]interface{}{
				"route": c.FullPath(),
				"error": err.Error(),
			})
		}
		c.Next()
	}
}

// MembersOnly refuse les sessions invité sur les routes d'écriture.
func MembersOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := session.Current(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
			return
		}
		if p.IsGuest() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Action réservée aux membres"})
			return
		}
		c.Next()
	}
}
