package follow

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/testutil"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

func router(viewer int64) *gin.Engine {
	r := testutil.Router()
	r.Use(testutil.As(testutil.Member(viewer)))
	r.POST("/api/follow/:id", FollowUser)
	r.DELETE("/api/follow/:id", UnfollowUser)
	r.GET("/api/following", GetFollowing)
	r.GET("/api/followers/:id", GetFollowers)
	return r
}

func setup(t *testing.T) {
	db := testutil.OpenDB(t, &user.User{}, &Follow{})
	require.NoError(t, db.Create(&[]user.User{
		{ID: 1, Username: "alice", Email: "a@campus.fr", PasswordHash: "x", Role: session.RoleUser},
		{ID: 2, Username: "bob", Email: "b@campus.fr", PasswordHash: "x", City: "Lyon", Role: session.RoleUser},
	}).Error)
}

func TestFollowLifecycle(t *testing.T) {
	setup(t)
	r := router(1)

	assert.Equal(t, http.StatusCreated, testutil.Do(r, http.MethodPost, "/api/follow/2", nil).Code)
	assert.Equal(t, http.StatusConflict, testutil.Do(r, http.MethodPost, "/api/follow/2", nil).Code)

	var following struct {
		Following []user.Summary `json:"following"`
	}
	testutil.Decode(t, testutil.Do(r, http.MethodGet, "/api/following", nil), &following)
	require.Len(t, following.Following, 1)
	assert.Equal(t, "bob", following.Following[0].Username)

	var followers struct {
		Followers []user.Summary `json:"followers"`
	}
	testutil.Decode(t, testutil.Do(r, http.MethodGet, "/api/followers/2", nil), &followers)
	require.Len(t, followers.Followers, 1)
	assert.Equal(t, int64(1), followers.Followers[0].ID)

	assert.Equal(t, http.StatusOK, testutil.Do(r, http.MethodDelete, "/api/follow/2", nil).Code)
	testutil.Decode(t, testutil.Do(r, http.MethodGet, "/api/following", nil), &following)
	assert.Empty(t, following.Following)
}

func TestFollowRejectsSelfAndUnknown(t *testing.T) {
	setup(t)
	r := router(1)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(r, http.MethodPost, "/api/follow/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(r, http.MethodPost, "/api/follow/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, testutil.Do(r, http.MethodPost, "/api/follow/abc", nil).Code)
}
