package feed

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusnet/CampusFeed-Back/internal/apperr"
	"github.com/campusnet/CampusFeed-Back/internal/session"
)

type testUser struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	Username  string
	AvatarURL string
	City      string
}

func (testUser) TableName() string { return "users" }

type testPost struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    int64
	Body      string
	ImageRef  *string
	Category  string
	Category2 *string `gorm:"column:category2"`
	Category3 *string `gorm:"column:category3"`
	Category4 *string `gorm:"column:category4"`
}

func (testPost) TableName() string { return "posts" }

type testFollow struct {
	ID         int64 `gorm:"primaryKey"`
	CreatedAt  time.Time
	FollowerID int64
	FollowedID int64
}

func (testFollow) TableName() string { return "follows" }

type testLike struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    int64
	PostID    int64
}

func (testLike) TableName() string { return "likes" }

type testComment struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	PostID    int64
	UserID    int64
	Body      string
}

func (testComment) TableName() string { return "comments" }

type testBookmark struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    int64
	PostID    int64
}

func (testBookmark) TableName() string { return "bookmarks" }

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func str(s string) *string { return &s }

func openTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) == 0 {
		models = []interface{}{&testUser{}, &testPost{}, &testFollow{}, &testLike{}, &testComment{}, &testBookmark{}}
	}
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func seed(t *testing.T, db *gorm.DB, rows ...interface{}) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
}

func ids(items []Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func member(id int64) session.Principal {
	return session.Principal{ID: id, Role: session.RoleUser}
}

func TestRankGuestIsChronological(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "alice", City: "Lyon"},
		&testUser{ID: 2, Username: "bob", City: "Paris"},
		&testPost{ID: 10, UserID: 1, Body: "a", Category: "Sports", CreatedAt: at(1)},
		&testPost{ID: 11, UserID: 2, Body: "b", Category: "general", CreatedAt: at(3)},
		&testPost{ID: 12, UserID: 1, Body: "c", Category: "Music", CreatedAt: at(2)},
		&testFollow{ID: 1, FollowerID: 2, FollowedID: 1},
	)

	items, err := Rank(context.Background(), db, session.Guest(), Filters{})
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 12, 10}, ids(items))
	for _, it := range items {
		assert.Equal(t, PostTypeRecommended, it.PostType)
		assert.Nil(t, it.Tier)
		assert.False(t, it.Liked)
	}
}

func TestRankGuestCategoryFilter(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "alice"},
		&testPost{ID: 10, UserID: 1, Body: "a", Category: "Sports", CreatedAt: at(1)},
		&testPost{ID: 11, UserID: 1, Body: "b", Category: "general", Category3: str("Sports"), CreatedAt: at(2)},
		&testPost{ID: 12, UserID: 1, Body: "c", Category: "Music", CreatedAt: at(3)},
	)

	items, err := Rank(context.Background(), db, session.Guest(), Filters{Category: "Sports"})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 10}, ids(items))
}

func TestRankFollowBeatsRecencyAcrossTiers(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "viewer", City: "Lyon"},
		&testUser{ID: 2, Username: "followed", City: "Paris"},
		&testUser{ID: 3, Username: "neighbour", City: "Lyon"},
		&testFollow{ID: 1, FollowerID: 1, FollowedID: 2},
		&testPost{ID: 20, UserID: 2, Body: "t1", Category: "Music", CreatedAt: at(1)},
		&testPost{ID: 21, UserID: 2, Body: "t2", Category: "Music", CreatedAt: at(2)},
		&testPost{ID: 30, UserID: 3, Body: "t3", Category: "Music", CreatedAt: at(3)},
	)

	items, err := Rank(context.Background(), db, member(1), Filters{})
	require.NoError(t, err)

	require.Equal(t, []int64{21, 20, 30}, ids(items))
	assert.Equal(t, PostTypeFollowing, items[0].PostType)
	assert.Equal(t, PostTypeFollowing, items[1].PostType)
	assert.Equal(t, PostTypeRecommended, items[2].PostType)
	assert.Equal(t, 1, *items[2].Tier)
}

func TestRankFollowedAuthorIsAlwaysTierZero(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "viewer", City: "Lyon"},
		&testUser{ID: 2, Username: "followed", City: "Lyon"},
		&testFollow{ID: 1, FollowerID: 1, FollowedID: 2},
		// Même ville et catégorie d'intérêt du lecteur : le suivi l'emporte.
		&testPost{ID: 5, UserID: 1, Body: "mine", Category: "Sports", CreatedAt: at(0)},
		&testPost{ID: 20, UserID: 2, Body: "x", Category: "Sports", CreatedAt: at(1)},
	)

	items, err := Rank(context.Background(), db, member(1), Filters{TargetUserID: ptr(int64(2))})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, *items[0].Tier)
	assert.Equal(t, PostTypeFollowing, items[0].PostType)
}

func TestRankEmptyCityNeverMatchesCityTier(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "viewer", City: ""},
		&testUser{ID: 2, Username: "nocity", City: ""},
		&testPost{ID: 20, UserID: 2, Body: "x", Category: "Music", CreatedAt: at(1)},
	)

	items, err := Rank(context.Background(), db, member(1), Filters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, *items[0].Tier)
	assert.Equal(t, PostTypeOther, items[0].PostType)
}

func TestRankInterestSignals(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "viewer"},
		&testUser{ID: 2, Username: "author"},
		// Dernier post du lecteur : Sports (signal principal).
		&testPost{ID: 1, UserID: 1, Body: "old", Category: "Music", CreatedAt: at(0)},
		&testPost{ID: 2, UserID: 1, Body: "new", Category: "Sports", CreatedAt: at(1)},
		// Catégorie la plus likée : Clubs (signal secondaire).
		&testPost{ID: 10, UserID: 2, Body: "club", Category: "Clubs", CreatedAt: at(2)},
		&testPost{ID: 11, UserID: 2, Body: "club2", Category: "Clubs", CreatedAt: at(3)},
		&testPost{ID: 12, UserID: 2, Body: "art", Category: "Art", CreatedAt: at(4)},
		&testPost{ID: 13, UserID: 2, Body: "sport", Category: "general", Category4: str("Sports"), CreatedAt: at(5)},
		&testLike{ID: 1, UserID: 1, PostID: 10},
		&testLike{ID: 2, UserID: 1, PostID: 11},
		&testLike{ID: 3, UserID: 1, PostID: 12},
	)

	s := LoadSignals(context.Background(), db, 1)
	assert.Equal(t, Signals{Primary: "Sports", Secondary: "Clubs", City: ""}, s)

	items, err := Rank(context.Background(), db, member(1), Filters{TargetUserID: ptr(int64(2))})
	require.NoError(t, err)

	assert.Equal(t, []int64{13, 11, 10, 12}, ids(items))
	assert.Equal(t, []string{PostTypeRecommended, PostTypeRecommended, PostTypeRecommended, PostTypeOther},
		[]string{items[0].PostType, items[1].PostType, items[2].PostType, items[3].PostType})
	assert.True(t, items[1].Liked)
	assert.EqualValues(t, 1, items[1].LikeCount)
}

func TestRankNewViewerCategory(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "newbie"},
		&testUser{ID: 2, Username: "author", City: "Lyon"},
		&testPost{ID: 10, UserID: 2, Body: "a", Category: "Academics", CreatedAt: at(1)},
		&testPost{ID: 11, UserID: 2, Body: "b", Category: "Sports", Category2: str("Academics"), CreatedAt: at(3)},
		&testPost{ID: 12, UserID: 2, Body: "c", Category: "general", CreatedAt: at(2)},
	)

	items, err := Rank(context.Background(), db, member(1), Filters{Category: "Academics"})
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 10}, ids(items))
	for _, it := range items {
		assert.Equal(t, 3, *it.Tier)
		assert.Equal(t, PostTypeOther, it.PostType)
	}
}

func TestRankProfileCategoryIsUnranked(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "viewer", City: "Lyon"},
		&testUser{ID: 2, Username: "author", City: "Lyon"},
		&testFollow{ID: 1, FollowerID: 1, FollowedID: 2},
		&testPost{ID: 10, UserID: 2, Body: "a", Category: "Sports", CreatedAt: at(1)},
		&testPost{ID: 11, UserID: 2, Body: "b", Category: "Sports", CreatedAt: at(2)},
		&testPost{ID: 12, UserID: 2, Body: "c", Category: "Music", CreatedAt: at(3)},
		&testBookmark{ID: 1, UserID: 1, PostID: 10},
	)

	items, err := Rank(context.Background(), db, member(1), Filters{TargetUserID: ptr(int64(2)), Category: "Sports"})
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 10}, ids(items))
	for _, it := range items {
		assert.Nil(t, it.Tier)
		assert.Empty(t, it.PostType)
	}
	assert.True(t, items[1].Bookmarked)
}

func TestRankIsDeterministic(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "viewer", City: "Lyon"},
		&testUser{ID: 2, Username: "a", City: "Lyon"},
		&testUser{ID: 3, Username: "b", City: "Paris"},
		// Même date de création : départage par id décroissant.
		&testPost{ID: 10, UserID: 2, Body: "x", Category: "general", CreatedAt: at(1)},
		&testPost{ID: 11, UserID: 3, Body: "y", Category: "general", CreatedAt: at(1)},
		&testPost{ID: 12, UserID: 3, Body: "z", Category: "Music", CreatedAt: at(1)},
		&testPost{ID: 13, UserID: 2, Body: "w", Category: "Music", CreatedAt: at(1)},
	)

	first, err := Rank(context.Background(), db, member(1), Filters{})
	require.NoError(t, err)
	second, err := Rank(context.Background(), db, member(1), Filters{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int64{13, 10, 11, 12}, ids(first))
}

func TestRankPagination(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, &testUser{ID: 1, Username: "a"})
	for i := int64(1); i <= 5; i++ {
		seed(t, db, &testPost{ID: i, UserID: 1, Body: "p", Category: "general", CreatedAt: at(int(i))})
	}

	page1, err := Rank(context.Background(), db, session.Guest(), Filters{Limit: 2})
	require.NoError(t, err)
	page2, err := Rank(context.Background(), db, session.Guest(), Filters{Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 4}, ids(page1))
	assert.Equal(t, []int64{3, 2}, ids(page2))
}

func TestRankEmptyResultIsNotNil(t *testing.T) {
	db := openTestDB(t)
	items, err := Rank(context.Background(), db, member(1), Filters{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoadSignalsFallsBackToSentinel(t *testing.T) {
	// Pas de table likes : la lecture du signal secondaire échoue.
	db := openTestDB(t, &testUser{}, &testPost{})
	seed(t, db,
		&testUser{ID: 1, Username: "viewer", City: "Lyon"},
		&testPost{ID: 1, UserID: 1, Body: "x", Category: "Sports", CreatedAt: at(1)},
	)

	s := LoadSignals(context.Background(), db, 1)
	assert.Equal(t, "Sports", s.Primary)
	assert.Equal(t, SentinelCategory, s.Secondary)
	assert.Equal(t, "Lyon", s.City)
}

func TestRankStoreErrorSurfaces(t *testing.T) {
	db := openTestDB(t, &testUser{})

	_, err := Rank(context.Background(), db, session.Guest(), Filters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStore)
}

func TestGetSinglePost(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "alice", City: "Lyon"},
		&testPost{ID: 10, UserID: 1, Body: "hello", Category: "Sports", CreatedAt: at(1)},
		&testLike{UserID: 2, PostID: 10, CreatedAt: at(2)},
		&testComment{UserID: 2, PostID: 10, Body: "hi", CreatedAt: at(2)},
	)

	item, err := Get(context.Background(), db, member(2), 10)
	require.NoError(t, err)
	assert.Equal(t, "alice", item.AuthorUsername)
	assert.Equal(t, int64(1), item.LikeCount)
	assert.Equal(t, int64(1), item.CommentCount)
	assert.True(t, item.Liked)
	assert.False(t, item.Bookmarked)

	_, err = Get(context.Background(), db, session.Guest(), 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBookmarksListsOnlyViewerBookmarks(t *testing.T) {
	db := openTestDB(t)
	seed(t, db,
		&testUser{ID: 1, Username: "alice"},
		&testPost{ID: 10, UserID: 1, Body: "a", Category: "Sports", CreatedAt: at(1)},
		&testPost{ID: 11, UserID: 1, Body: "b", Category: "Sports", CreatedAt: at(2)},
		&testPost{ID: 12, UserID: 1, Body: "c", Category: "Sports", CreatedAt: at(3)},
		&testBookmark{UserID: 5, PostID: 10, CreatedAt: at(4)},
		&testBookmark{UserID: 5, PostID: 12, CreatedAt: at(4)},
		&testBookmark{UserID: 6, PostID: 11, CreatedAt: at(4)},
	)

	items, err := Bookmarks(context.Background(), db, member(5), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 10}, ids(items))
	for _, it := range items {
		assert.True(t, it.Bookmarked)
	}
}

func ptr[T any](v T) *T { return &v }
