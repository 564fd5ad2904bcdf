package feed

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/metrics"
)

// SentinelCategory remplace tout signal d'intérêt introuvable.
const SentinelCategory = "general"

// Signals regroupe ce qui personnalise le fil d'un membre.
type Signals struct {
	Primary   string // catégorie du dernier post du lecteur
	Secondary string // catégorie la plus likée par le lecteur
	City      string // vide = inconnue, ne correspond jamais
}

// Interests retourne les catégories d'intérêt sans doublon.
func (s Signals) Interests() []string {
	if s.Primary == s.Secondary {
		return []string{s.Primary}
	}
	return []string{s.Primary, s.Secondary}
}

// LoadSignals ne renvoie jamais d'erreur : une lecture en échec retombe sur
// la catégorie sentinelle (ou une ville vide).
func LoadSignals(ctx context.Context, db *gorm.DB, viewerID int64) Signals {
	tx := db.WithContext(ctx)
	return Signals{
		Primary:   lookupCategory("primary", viewerID, latestPostCategory(tx, viewerID)),
		Secondary: lookupCategory("secondary", viewerID, mostLikedCategory(tx, viewerID)),
		City:      viewerCity(tx, viewerID),
	}
}

func latestPostCategory(db *gorm.DB, viewerID int64) func(*[]string) error {
	return func(out *[]string) error {
		return db.Table("posts").
			Where("user_id = ?", viewerID).
			Order("created_at DESC, id DESC").
			Limit(1).
			Pluck("category", out).Error
	}
}

func mostLikedCategory(db *gorm.DB, viewerID int64) func(*[]string) error {
	return func(out *[]string) error {
		return db.Table("likes").
			Joins("JOIN posts ON posts.id = likes.post_id").
			Where("likes.user_id = ?", viewerID).
			Group("posts.category").
			Order("COUNT(*) DESC, posts.category ASC").
			Limit(1).
			Pluck("posts.category", out).Error
	}
}

func lookupCategory(signal string, viewerID int64, query func(*[]string) error) string {
	var categories []string
	if err := query(&categories); err != nil {
		metrics.FeedSignalFallbacks.WithLabelValues(signal).Inc()
		logs.LogJSON("WARN", "Interest signal lookup failed, using sentinel", map[string]interface{}{
			"error":  err.Error(),
			"signal": signal,
			"userID": viewerID,
		})
		return SentinelCategory
	}
	if len(categories) == 0 || categories[0] == "" {
		return SentinelCategory
	}
	return categories[0]
}

func viewerCity(db *gorm.DB, viewerID int64) string {
	var cities []string
	if err := db.Table("users").Where("id = ?", viewerID).Limit(1).Pluck("city", &cities).Error; err != nil {
		metrics.FeedSignalFallbacks.WithLabelValues("city").Inc()
		logs.LogJSON("WARN", "Viewer city lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"userID": viewerID,
		})
		return ""
	}
	if len(cities) == 0 {
		return ""
	}
	return cities[0]
}
