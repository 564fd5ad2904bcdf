package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

const dateLayout = "2006-01-02"

// maxChartDays borne la série jour par jour.
const maxChartDays = 366

// parseRange lit start_date et end_date (30 derniers jours par défaut).
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide pour start_date"})
			return start, end, false
		}
		start = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide pour end_date"})
			return start, end, false
		}
		end = parsed
	}
	if end.Before(start) || end.Sub(start) > maxChartDays*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Période invalide"})
		return start, end, false
	}
	return start, end, true
}

// GetDashboardStats GET /api/admin/stats
func GetDashboardStats(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)
	db := database.DB.WithContext(c.Request.Context())

	start, end, ok := parseRange(c)
	if !ok {
		return
	}
	until := end.AddDate(0, 0, 1)

	var totalUsers, totalPosts, totalComments, totalLikes int64
	var totalEvents, totalForumMessages, pendingReports int64
	var newUsers, newPosts int64

	err := errors.Join(
		db.Table("users").Count(&totalUsers).Error,
		db.Table("posts").Count(&totalPosts).Error,
		db.Table("comments").Count(&totalComments).Error,
		db.Table("likes").Count(&totalLikes).Error,
		db.Table("events").Count(&totalEvents).Error,
		db.Table("forum_messages").Where("is_deleted = false").Count(&totalForumMessages).Error,
		db.Table("reports").Where("status = ?", "pending").Count(&pendingReports).Error,
		db.Table("users").Where("created_at >= ? AND created_at < ?", start, until).Count(&newUsers).Error,
		db.Table("posts").Where("created_at >= ? AND created_at < ?", start, until).Count(&newPosts).Error,
	)
	if err != nil {
		logs.LogJSON("ERROR", "Error computing admin stats", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": p.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul des statistiques"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": gin.H{
		"total_users":          totalUsers,
		"total_posts":          totalPosts,
		"total_comments":       totalComments,
		"total_likes":          totalLikes,
		"total_events":         totalEvents,
		"total_forum_messages": totalForumMessages,
		"pending_reports":      pendingReports,
		"new_users":            newUsers,
		"new_posts":            newPosts,
		"date_range": gin.H{
			"start": start.Format(dateLayout),
			"end":   end.Format(dateLayout),
		},
	}})

	logs.LogJSON("INFO", "Admin stats retrieved successfully", map[string]interface{}{
		"route":  route,
		"userID": p.ID,
	})
}

// GetChartData GET /api/admin/charts/:type (evolution ou categories)
func GetChartData(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)
	chartType := c.Param("type")
	db := database.DB.WithContext(c.Request.Context())

	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	var (
		data []gin.H
		err  error
	)
	switch chartType {
	case "evolution":
		data, err = evolution(db, start, end)
	case "categories":
		data, err = categories(db, start, end.AddDate(0, 0, 1))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type de graphique non supporté"})
		return
	}
	if err != nil {
		logs.LogJSON("ERROR", "Error computing chart data", map[string]interface{}{
			"error":     err.Error(),
			"route":     route,
			"chartType": chartType,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul du graphique"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})

	logs.LogJSON("INFO", "Chart data retrieved successfully", map[string]interface{}{
		"route":     route,
		"userID":    p.ID,
		"chartType": chartType,
		"startDate": start.Format(dateLayout),
		"endDate":   end.Format(dateLayout),
	})
}

// evolution compte jour par jour les créations de chaque table.
func evolution(db *gorm.DB, start, end time.Time) ([]gin.H, error) {
	tables := []string{"users", "posts", "likes", "events"}

	results := []gin.H{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		next := d.AddDate(0, 0, 1)
		point := gin.H{"date": d.Format(dateLayout)}
		for _, table := range tables {
			var count int64
			if err := db.Table(table).Where("created_at >= ? AND created_at < ?", d, next).Count(&count).Error; err != nil {
				return nil, err
			}
			point[table] = count
		}
		results = append(results, point)
	}
	return results, nil
}

// categories répartit les posts de la période par catégorie principale.
func categories(db *gorm.DB, start, until time.Time) ([]gin.H, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := db.Table("posts").
		Select("category, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", start, until).
		Group("category").
		Order("count DESC, category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		results = append(results, gin.H{"name": row.Category, "value": row.Count})
	}
	return results, nil
}

// GetTopUsers GET /api/admin/top-users
func GetTopUsers(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)
	db := database.DB.WithContext(c.Request.Context())

	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	// Top utilisateurs par nombre de posts
	topByPosts := []struct {
		UserID    int64  `json:"user_id"`
		Username  string `json:"username"`
		PostCount int64  `json:"post_count"`
	}{}

	// Top utilisateurs par nombre de likes reçus
	topByLikes := []struct {
		UserID     int64  `json:"user_id"`
		Username   string `json:"username"`
		LikesCount int64  `json:"likes_count"`
	}{}

	err := errors.Join(
		db.Table("posts").
			Select("posts.user_id, users.username, COUNT(posts.id) AS post_count").
			Joins("JOIN users ON posts.user_id = users.id").
			Group("posts.user_id, users.username").
			Order("post_count DESC, posts.user_id ASC").
			Limit(limit).
			Scan(&topByPosts).Error,
		db.Table("likes").
			Select("posts.user_id, users.username, COUNT(likes.id) AS likes_count").
			Joins("JOIN posts ON likes.post_id = posts.id").
			Joins("JOIN users ON posts.user_id = users.id").
			Group("posts.user_id, users.username").
			Order("likes_count DESC, posts.user_id ASC").
			Limit(limit).
			Scan(&topByLikes).Error,
	)
	if err != nil {
		logs.LogJSON("ERROR", "Error computing top users", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul du classement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top_by_posts": topByPosts,
		"top_by_likes": topByLikes,
	})

	logs.LogJSON("INFO", "Top users retrieved successfully", map[string]interface{}{
		"route":  route,
		"userID": p.ID,
		"limit":  limit,
	})
}

type roleInput struct {
	Role session.Role `json:"role" binding:"required"`
}

// SetUserRole PUT /api/admin/users/:id/role. Un admin ne peut pas se retirer
// ses propres droits.
func SetUserRole(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)

	targetID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	var input roleInput
	if err := c.ShouldBindJSON(&input); err != nil ||
		(input.Role != session.RoleAdmin && input.Role != session.RoleUser) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide"})
		return
	}
	if targetID == p.ID && input.Role != session.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vous ne pouvez pas retirer vos propres droits"})
		return
	}

	res := database.DB.WithContext(c.Request.Context()).
		Table("users").
		Where("id = ?", targetID).
		Update("role", input.Role)
	if res.Error != nil {
		logs.LogJSON("ERROR", "Error updating user role", map[string]interface{}{
			"error":    res.Error.Error(),
			"route":    route,
			"targetID": targetID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du rôle"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	logs.LogJSON("INFO", "User role updated", map[string]interface{}{
		"route":    route,
		"userID":   p.ID,
		"targetID": targetID,
		"role":     input.Role,
	})
	c.JSON(http.StatusOK, gin.H{"id": targetID, "role": input.Role})
}
