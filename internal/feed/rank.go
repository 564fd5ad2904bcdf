package feed

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/apperr"
	"github.com/campusnet/CampusFeed-Back/internal/metrics"
	"github.com/campusnet/CampusFeed-Back/internal/session"
)

const (
	PostTypeFollowing   = "following"
	PostTypeRecommended = "recommended"
	PostTypeOther       = "other"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Filters struct {
	TargetUserID  *int64
	Category      string
	AnyCategories []string
	Limit         int
	Offset        int
}

func (f Filters) page() (int, int) {
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Item est une ligne du fil : le post, son auteur et ses compteurs.
type Item struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         int64     `json:"user_id"`
	Body           string    `json:"body"`
	ImageRef       *string   `json:"image_ref"`
	Category       string    `json:"category"`
	Category2      *string   `json:"category2" gorm:"column:category2"`
	Category3      *string   `json:"category3" gorm:"column:category3"`
	Category4      *string   `json:"category4" gorm:"column:category4"`
	AuthorUsername string    `json:"author_username"`
	AuthorAvatar   string    `json:"author_avatar"`
	AuthorCity     string    `json:"author_city"`
	LikeCount      int64     `json:"like_count"`
	CommentCount   int64     `json:"comment_count"`
	Liked          bool      `json:"liked"`
	Bookmarked     bool      `json:"bookmarked"`
	Tier           *int      `json:"tier,omitempty"`
	PostType       string    `json:"post_type,omitempty"`
}

// PostType déduit le libellé d'affichage du seul palier.
func PostType(tier int) string {
	switch tier {
	case 0:
		return PostTypeFollowing
	case 1, 2:
		return PostTypeRecommended
	default:
		return PostTypeOther
	}
}

type mode string

const (
	modeGuest   mode = "guest"
	modeProfile mode = "profile_category"
	modeRanked  mode = "ranked"
)

func selectMode(viewer session.Principal, f Filters) mode {
	switch {
	case viewer.IsGuest():
		return modeGuest
	case f.TargetUserID != nil && f.Category != "":
		return modeProfile
	default:
		return modeRanked
	}
}

// Rank retourne le fil de viewer. Les invités reçoivent un fil purement
// chronologique ; la vue profil + catégorie n'est pas classée ; sinon les
// posts sont triés par palier puis du plus récent au plus ancien.
func Rank(ctx context.Context, db *gorm.DB, viewer session.Principal, f Filters) ([]Item, error) {
	m := selectMode(viewer, f)
	start := time.Now()
	defer func() {
		metrics.FeedRankDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())
	}()

	limit, offset := f.page()
	b := NewBuilder().Page(limit, offset)
	if f.TargetUserID != nil {
		b.Author(*f.TargetUserID)
	}
	if f.Category != "" {
		b.Category(f.Category)
	}
	b.AnyCategory(f.AnyCategories)

	switch m {
	case modeProfile:
		b.Viewer(viewer.ID)
	case modeRanked:
		b.Viewer(viewer.ID).Tiered(viewer.ID, LoadSignals(ctx, db, viewer.ID))
	}

	query, args := b.Build()
	var items []Item
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("rank feed: %w: %w", apperr.ErrStore, err)
	}

	for i := range items {
		switch {
		case m == modeGuest:
			items[i].PostType = PostTypeRecommended
		case items[i].Tier != nil:
			items[i].PostType = PostType(*items[i].Tier)
		}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Get retourne un post seul, avec les drapeaux du lecteur s'il est membre.
func Get(ctx context.Context, db *gorm.DB, viewer session.Principal, postID int64) (Item, error) {
	b := NewBuilder().Post(postID)
	if !viewer.IsGuest() {
		b.Viewer(viewer.ID)
	}

	query, args := b.Build()
	var items []Item
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return Item{}, fmt.Errorf("get post %d: %w: %w", postID, apperr.ErrStore, err)
	}
	if len(items) == 0 {
		return Item{}, fmt.Errorf("get post %d: %w", postID, apperr.ErrNotFound)
	}
	return items[0], nil
}

// Bookmarks liste les posts enregistrés par viewer, du plus récent au plus ancien.
func Bookmarks(ctx context.Context, db *gorm.DB, viewer session.Principal, limit, offset int) ([]Item, error) {
	limit, offset = Filters{Limit: limit, Offset: offset}.page()
	query, args := NewBuilder().
		BookmarkedBy(viewer.ID).
		Viewer(viewer.ID).
		Page(limit, offset).
		Build()

	items := []Item{}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("list bookmarks: %w: %w", apperr.ErrStore, err)
	}
	return items, nil
}
