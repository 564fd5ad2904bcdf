package like

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/testutil"
)

type testPost struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    int64
}

func (testPost) TableName() string { return "posts" }

func setup(t *testing.T) *gorm.DB {
	db := testutil.OpenDB(t, &testPost{}, &Like{})
	require.NoError(t, db.Create(&testPost{ID: 10, UserID: 1}).Error)
	return db
}

func TestToggleLike(t *testing.T) {
	db := setup(t)
	r := testutil.Router()
	r.Use(testutil.As(testutil.Member(2)))
	r.POST("/api/posts/:id/like", ToggleLike)

	w := testutil.Do(r, http.MethodPost, "/api/posts/10/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LikeResponse
	testutil.Decode(t, w, &resp)
	assert.Equal(t, LikeResponse{PostID: 10, LikeCount: 1, IsLiked: true}, resp)

	w = testutil.Do(r, http.MethodPost, "/api/posts/10/like", nil)
	testutil.Decode(t, w, &resp)
	assert.Equal(t, LikeResponse{PostID: 10, LikeCount: 0, IsLiked: false}, resp)

	var count int64
	db.Model(&Like{}).Count(&count)
	assert.Zero(t, count)

	assert.Equal(t, http.StatusNotFound, testutil.Do(r, http.MethodPost, "/api/posts/99/like", nil).Code)
}

func TestGetLikeStatus(t *testing.T) {
	db := setup(t)
	require.NoError(t, db.Create(&Like{UserID: 2, PostID: 10}).Error)
	require.NoError(t, db.Create(&Like{UserID: 3, PostID: 10}).Error)

	anonymous := testutil.Router()
	anonymous.GET("/api/posts/:id/likes", GetLikeStatus)
	var resp LikeResponse
	testutil.Decode(t, testutil.Do(anonymous, http.MethodGet, "/api/posts/10/likes", nil), &resp)
	assert.Equal(t, int64(2), resp.LikeCount)
	assert.False(t, resp.IsLiked)

	guest := testutil.Router()
	guest.Use(testutil.As(session.Guest()))
	guest.GET("/api/posts/:id/likes", GetLikeStatus)
	testutil.Decode(t, testutil.Do(guest, http.MethodGet, "/api/posts/10/likes", nil), &resp)
	assert.False(t, resp.IsLiked)

	liker := testutil.Router()
	liker.Use(testutil.As(testutil.Member(3)))
	liker.GET("/api/posts/:id/likes", GetLikeStatus)
	testutil.Decode(t, testutil.Do(liker, http.MethodGet, "/api/posts/10/likes", nil), &resp)
	assert.True(t, resp.IsLiked)
}

func TestLikeIsUniquePerUserAndPost(t *testing.T) {
	db := setup(t)
	require.NoError(t, db.Create(&Like{UserID: 2, PostID: 10}).Error)
	err := db.Create(&Like{UserID: 2, PostID: 10}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
