package report

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/forum"
	"github.com/campusnet/CampusFeed-Back/internal/post"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/testutil"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

func setup(t *testing.T) *gorm.DB {
	db := testutil.OpenDB(t, &user.User{}, &post.Post{}, &post.Comment{}, &forum.Forum{}, &forum.Message{}, &Report{})
	require.NoError(t, db.Create(&[]user.User{
		{ID: 1, Username: "alice", Email: "a@campus.fr", PasswordHash: "x", City: "Lyon", Role: session.RoleUser},
		{ID: 2, Username: "bob", Email: "b@campus.fr", PasswordHash: "x", Role: session.RoleUser},
		{ID: 3, Username: "root", Email: "r@campus.fr", PasswordHash: "x", Role: session.RoleAdmin},
	}).Error)
	require.NoError(t, db.Create(&post.Post{ID: 10, UserID: 2, Body: "spam", Category: "general"}).Error)
	require.NoError(t, db.Create(&forum.Forum{ID: 5, CreatorID: 2, Title: "BDE", Category: "general"}).Error)
	require.NoError(t, db.Create(&forum.Message{ID: 7, ForumID: 5, SenderID: 2, Body: "pub"}).Error)
	return db
}

func router(viewer int64) *gin.Engine {
	r := testutil.Router()
	r.Use(testutil.As(testutil.Member(viewer)))
	r.POST("/api/reports", CreateReport)
	r.GET("/api/admin/reports", GetReports)
	r.GET("/api/admin/reports/stats", GetReportStats)
	r.PUT("/api/admin/reports/:id", UpdateReport)
	r.DELETE("/api/admin/reports/:id", DeleteReport)
	return r
}

func TestCreateReport(t *testing.T) {
	db := setup(t)
	r := router(1)

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"post", gin.H{"target_type": "post", "target_id": 10, "reason": "spam"}, http.StatusCreated},
		{"same post again", gin.H{"target_type": "post", "target_id": 10, "reason": "spam"}, http.StatusCreated},
		{"user", gin.H{"target_type": "user", "target_id": 2, "reason": "impersonation"}, http.StatusCreated},
		{"forum message", gin.H{"target_type": "forum_message", "target_id": 7, "reason": "harassment"}, http.StatusCreated},
		{"unknown target", gin.H{"target_type": "post", "target_id": 99, "reason": "spam"}, http.StatusNotFound},
		{"bad type", gin.H{"target_type": "event", "target_id": 1, "reason": "spam"}, http.StatusBadRequest},
		{"bad reason", gin.H{"target_type": "post", "target_id": 10, "reason": "boring"}, http.StatusBadRequest},
		{"missing target", gin.H{"target_type": "post", "reason": "spam"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Do(r, http.MethodPost, "/api/reports", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	var count int64
	db.Model(&Report{}).Where("reporter_id = ?", 1).Count(&count)
	assert.Equal(t, int64(4), count)
}

func TestGetReportsWithTargets(t *testing.T) {
	db := setup(t)
	require.NoError(t, db.Create(&[]Report{
		{ReporterID: 1, TargetType: ReportTypePost, TargetID: 10, Reason: ReasonSpam, Status: StatusPending},
		{ReporterID: 1, TargetType: ReportTypeForumMessage, TargetID: 7, Reason: ReasonSpam, Status: StatusResolved},
	}).Error)

	var resp struct {
		Reports    []ReportWithTarget `json:"reports"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	w := testutil.Do(router(3), http.MethodGet, "/api/admin/reports?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &resp)

	require.Len(t, resp.Reports, 1)
	assert.Equal(t, int64(1), resp.Pagination.Total)
	assert.Equal(t, "alice", resp.Reports[0].Reporter.Username)
	require.NotNil(t, resp.Reports[0].TargetPost)
	assert.Equal(t, "spam", resp.Reports[0].TargetPost.Body)
}

func TestUpdateReport(t *testing.T) {
	db := setup(t)
	report := Report{ReporterID: 1, TargetType: ReportTypePost, TargetID: 10, Reason: ReasonSpam, Status: StatusPending}
	require.NoError(t, db.Create(&report).Error)
	r := router(3)
	path := "/api/admin/reports/" + itoa(report.ID)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(r, http.MethodPut, path, gin.H{"status": "closed"}).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(r, http.MethodPut, "/api/admin/reports/99", gin.H{"status": "resolved"}).Code)

	w := testutil.Do(r, http.MethodPut, path, gin.H{"status": "resolved", "admin_note": "post supprimé"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored Report
	require.NoError(t, db.First(&stored, report.ID).Error)
	assert.Equal(t, StatusResolved, stored.Status)
	require.NotNil(t, stored.AdminID)
	assert.Equal(t, int64(3), *stored.AdminID)
	assert.NotNil(t, stored.ResolvedAt)
}

func TestDeleteReport(t *testing.T) {
	db := setup(t)
	report := Report{ReporterID: 1, TargetType: ReportTypeUser, TargetID: 2, Reason: ReasonOther, Status: StatusPending}
	require.NoError(t, db.Create(&report).Error)
	path := "/api/admin/reports/" + itoa(report.ID)

	assert.Equal(t, http.StatusOK, testutil.Do(router(3), http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(router(3), http.MethodDelete, path, nil).Code)
}

func TestGetReportStats(t *testing.T) {
	db := setup(t)
	require.NoError(t, db.Create(&[]Report{
		{ReporterID: 1, TargetType: ReportTypePost, TargetID: 10, Reason: ReasonSpam, Status: StatusPending},
		{ReporterID: 2, TargetType: ReportTypePost, TargetID: 10, Reason: ReasonSpam, Status: StatusPending},
	}).Error)

	var resp struct {
		StatsByStatus []struct {
			Status ReportStatus `json:"status"`
			Count  int64        `json:"count"`
		} `json:"stats_by_status"`
		RecentCount int64 `json:"recent_count"`
	}
	w := testutil.Do(router(3), http.MethodGet, "/api/admin/reports/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &resp)

	require.Len(t, resp.StatsByStatus, 1)
	assert.Equal(t, int64(2), resp.StatsByStatus[0].Count)
	assert.Equal(t, int64(2), resp.RecentCount)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
