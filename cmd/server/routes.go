package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusnet/CampusFeed-Back/internal/admin"
	"github.com/campusnet/CampusFeed-Back/internal/auth"
	"github.com/campusnet/CampusFeed-Back/internal/bookmark"
	"github.com/campusnet/CampusFeed-Back/internal/config"
	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/event"
	"github.com/campusnet/CampusFeed-Back/internal/follow"
	"github.com/campusnet/CampusFeed-Back/internal/forum"
	"github.com/campusnet/CampusFeed-Back/internal/like"
	"github.com/campusnet/CampusFeed-Back/internal/metrics"
	"github.com/campusnet/CampusFeed-Back/internal/middleware"
	"github.com/campusnet/CampusFeed-Back/internal/post"
	"github.com/campusnet/CampusFeed-Back/internal/report"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

func newRouter(cfg *config.Config, resolver *session.Resolver, h *auth.Handler, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	// Inscription, connexion, session invité
	authRoutes := api.Group("/auth", middleware.RateLimit(limiter))
	authRoutes.POST("/signup", h.Signup)
	authRoutes.POST("/login", h.Login)
	authRoutes.POST("/guest", h.Guest)
	authRoutes.POST("/logout", h.Logout)

	// Lecture : session facultative
	public := api.Group("", middleware.OptionalAuth(resolver))
	public.GET("/posts", post.GetFeed)
	public.GET("/posts/:id", post.GetPostByID)
	public.GET("/posts/:id/comments", post.GetComments)
	public.GET("/posts/:id/likes", like.GetLikeStatus)
	public.GET("/users/search", user.SearchUsers)
	public.GET("/users/:id", user.GetUser)
	public.GET("/followers/:id", follow.GetFollowers)
	public.GET("/events", event.GetEvents)
	public.GET("/events/:id/participants", event.GetParticipants)
	public.GET("/forums", forum.GetForums)
	public.GET("/forums/:id/messages", forum.GetForumMessages)

	// Écriture : membres connectés uniquement
	members := api.Group("", middleware.Auth(resolver), middleware.MembersOnly())
	members.GET("/me", user.GetMe)
	members.PUT("/me", user.UpdateMe)

	members.POST("/posts", post.CreatePost)
	members.DELETE("/posts/:id", post.DeletePost)
	members.POST("/posts/:id/comments", post.CreateComment)
	members.DELETE("/comments/:id", post.DeleteComment)
	members.POST("/posts/:id/like", like.ToggleLike)
	members.POST("/posts/:id/bookmark", bookmark.ToggleBookmark)
	members.GET("/bookmarks", bookmark.ListBookmarks)

	members.POST("/follow/:id", follow.FollowUser)
	members.DELETE("/follow/:id", follow.UnfollowUser)
	members.GET("/following", follow.GetFollowing)

	members.POST("/events", event.CreateEvent)
	members.DELETE("/events/:id", event.DeleteEvent)
	members.POST("/events/:id/join", event.JoinEvent)
	members.DELETE("/events/:id/join", event.LeaveEvent)

	members.POST("/forums", forum.CreateForum)
	members.POST("/forums/:id/messages", forum.PostForumMessage)
	members.DELETE("/forums/messages/:id", forum.DeleteForumMessage)

	members.POST("/reports", report.CreateReport)

	// Administration : rôle relu en base
	adminRoutes := api.Group("/admin", middleware.Auth(resolver), middleware.AdminOnly())
	adminRoutes.GET("/stats", admin.GetDashboardStats)
	adminRoutes.GET("/charts/:type", admin.GetChartData)
	adminRoutes.GET("/top-users", admin.GetTopUsers)
	adminRoutes.PUT("/users/:id/role", admin.SetUserRole)
	adminRoutes.GET("/reports", report.GetReports)
	adminRoutes.GET("/reports/stats", report.GetReportStats)
	adminRoutes.PUT("/reports/:id", report.UpdateReport)
	adminRoutes.DELETE("/reports/:id", report.DeleteReport)

	api.DELETE("/forums/:id", middleware.Auth(resolver), middleware.AdminOnly(), forum.DeleteForum)

	return r
}

func health(c *gin.Context) {
	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
