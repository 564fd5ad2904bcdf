package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/forum"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/post"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

// CreateReport POST /api/reports. Un même membre peut signaler plusieurs fois la même cible.
func CreateReport(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)

	var input CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if msg := input.problem(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		logs.LogJSON("WARN", "Rejected report input", map[string]interface{}{
			"targetType": input.TargetType,
			"reason":     input.Reason,
			"route":      route,
			"userID":     p.ID,
		})
		return
	}

	// La cible doit exister au moment du signalement
	if err := validateTargetExists(database.DB.WithContext(c.Request.Context()), input.TargetType, input.TargetID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
			logs.LogJSON("ERROR", "Report target lookup failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": p.ID,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Élément à signaler non trouvé"})
		logs.LogJSON("WARN", "Report target not found", map[string]interface{}{
			"targetType": input.TargetType,
			"targetID":   input.TargetID,
			"route":      route,
			"userID":     p.ID,
		})
		return
	}

	report := Report{
		ReporterID:  p.ID,
		TargetType:  input.TargetType,
		TargetID:    input.TargetID,
		Reason:      input.Reason,
		Description: input.Description,
		Status:      StatusPending,
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du signalement"})
		logs.LogJSON("ERROR", "Error creating report", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": p.ID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})

	logs.LogJSON("INFO", "Report created successfully", map[string]interface{}{
		"reportID":   report.ID,
		"targetType": input.TargetType,
		"targetID":   input.TargetID,
		"route":      route,
		"userID":     p.ID,
	})
}

// GetReports GET /api/admin/reports?status=&target_type=&reason=&page=&limit=
func GetReports(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)
	db := database.DB.WithContext(c.Request.Context())

	page, limit, offset := utils.ParsePage(c)

	// Filtres, reconstruits pour le comptage puis pour la page
	filtered := func() *gorm.DB {
		query := db.Model(&Report{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if targetType := c.Query("target_type"); targetType != "" {
			query = query.Where("target_type = ?", targetType)
		}
		if reason := c.Query("reason"); reason != "" {
			query = query.Where("reason = ?", reason)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des signalements"})
		return
	}

	var reports []Report
	if err := filtered().Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des signalements"})
		logs.LogJSON("ERROR", "Error fetching reports", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": p.ID,
		})
		return
	}

	reporters := loadSummaries(db, reports)

	items := make([]ReportWithTarget, len(reports))
	for i, report := range reports {
		report.Reporter = reporters[report.ReporterID]
		items[i] = withTarget(db, report)
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// UpdateReport PUT /api/admin/reports/:id
func UpdateReport(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)
	db := database.DB.WithContext(c.Request.Context())

	reportID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de signalement invalide"})
		return
	}

	var input UpdateReportInput
	if err := c.ShouldBindJSON(&input); err != nil || !input.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	var report Report
	if err := db.First(&report, reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Signalement non trouvé"})
		logs.LogJSON("WARN", "Report not found", map[string]interface{}{
			"reportID": reportID,
			"route":    route,
			"userID":   p.ID,
		})
		return
	}

	updates := map[string]interface{}{
		"status":     input.Status,
		"admin_note": input.AdminNote,
		"admin_id":   p.ID,
	}

	// resolved_at ne vaut que pour un statut final
	if input.Status == StatusResolved || input.Status == StatusRejected {
		now := time.Now()
		updates["resolved_at"] = &now
	} else {
		updates["resolved_at"] = nil
	}

	if err := db.Model(&report).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		logs.LogJSON("ERROR", "Error updating report", map[string]interface{}{
			"error":    err.Error(),
			"reportID": reportID,
			"route":    route,
			"userID":   p.ID,
		})
		return
	}

	if err := db.First(&report, reportID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du rechargement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})

	logs.LogJSON("INFO", "Report updated successfully", map[string]interface{}{
		"reportID": reportID,
		"status":   input.Status,
		"route":    route,
		"userID":   p.ID,
	})
}

// DeleteReport DELETE /api/admin/reports/:id
func DeleteReport(c *gin.Context) {
	route := c.FullPath()
	p, _ := session.Current(c)

	reportID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de signalement invalide"})
		return
	}

	res := database.DB.WithContext(c.Request.Context()).Delete(&Report{}, reportID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		logs.LogJSON("ERROR", "Error deleting report", map[string]interface{}{
			"error":    res.Error.Error(),
			"reportID": reportID,
			"route":    route,
			"userID":   p.ID,
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Signalement non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signalement supprimé avec succès"})

	logs.LogJSON("INFO", "Report deleted successfully", map[string]interface{}{
		"reportID": reportID,
		"route":    route,
		"userID":   p.ID,
	})
}

const recentWindow = 24 * time.Hour

// GetReportStats GET /api/admin/reports/stats. recent_count couvre les dernières 24h.
func GetReportStats(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	statsByStatus := []struct {
		Status ReportStatus `json:"status"`
		Count  int64        `json:"count"`
	}{}
	statsByType := []struct {
		TargetType ReportType `json:"target_type"`
		Count      int64      `json:"count"`
	}{}
	statsByReason := []struct {
		Reason ReportReason `json:"reason"`
		Count  int64        `json:"count"`
	}{}
	var recentCount int64

	err := errors.Join(
		db.Model(&Report{}).Select("status, COUNT(*) as count").Group("status").Scan(&statsByStatus).Error,
		db.Model(&Report{}).Select("target_type, COUNT(*) as count").Group("target_type").Scan(&statsByType).Error,
		db.Model(&Report{}).Select("reason, COUNT(*) as count").Group("reason").Scan(&statsByReason).Error,
		db.Model(&Report{}).Where("created_at > ?", time.Now().Add(-recentWindow)).Count(&recentCount).Error,
	)
	if err != nil {
		logs.LogJSON("ERROR", "Error computing report stats", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul des statistiques"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats_by_status": statsByStatus,
		"stats_by_type":   statsByType,
		"stats_by_reason": statsByReason,
		"recent_count":    recentCount,
	})
}

// validateTargetExists retourne gorm.ErrRecordNotFound si la cible n'existe pas.
func validateTargetExists(db *gorm.DB, targetType ReportType, targetID int64) error {
	var model interface{}
	switch targetType {
	case ReportTypePost:
		model = &post.Post{}
	case ReportTypeUser:
		model = &user.User{}
	case ReportTypeComment:
		model = &post.Comment{}
	case ReportTypeForumMessage:
		model = &forum.Message{}
	default:
		return gorm.ErrRecordNotFound
	}

	var count int64
	if err := db.Model(model).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func loadSummaries(db *gorm.DB, reports []Report) map[int64]user.Summary {
	ids := make([]int64, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ReporterID)
	}

	out := make(map[int64]user.Summary, len(ids))
	if len(ids) == 0 {
		return out
	}
	var summaries []user.Summary
	db.Model(&user.User{}).Select("id, username, avatar_url, city").Where("id IN ?", ids).Scan(&summaries)
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out
}

// withTarget charge la cible ; une cible supprimée depuis reste simplement absente.
func withTarget(db *gorm.DB, report Report) ReportWithTarget {
	out := ReportWithTarget{Report: report}

	switch report.TargetType {
	case ReportTypePost:
		var target post.Post
		if err := db.First(&target, report.TargetID).Error; err == nil {
			out.TargetPost = &target
		}
	case ReportTypeUser:
		var target user.Summary
		if err := db.Model(&user.User{}).Select("id, username, avatar_url, city").Where("id = ?", report.TargetID).Take(&target).Error; err == nil {
			out.TargetUser = &target
		}
	case ReportTypeComment:
		var target post.Comment
		if err := db.First(&target, report.TargetID).Error; err == nil {
			out.TargetComment = &target
		}
	case ReportTypeForumMessage:
		var target forum.Message
		if err := db.First(&target, report.TargetID).Error; err == nil {
			out.TargetForumMessage = &target
		}
	}
	return out
}
