package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusnet/CampusFeed-Back/internal/auth"
	"github.com/campusnet/CampusFeed-Back/internal/bookmark"
	"github.com/campusnet/CampusFeed-Back/internal/config"
	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/event"
	"github.com/campusnet/CampusFeed-Back/internal/follow"
	"github.com/campusnet/CampusFeed-Back/internal/forum"
	"github.com/campusnet/CampusFeed-Back/internal/like"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/middleware"
	"github.com/campusnet/CampusFeed-Back/internal/post"
	"github.com/campusnet/CampusFeed-Back/internal/report"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/storage"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logs.LogJSON("FATAL", "Invalid configuration", map[string]interface{}{"error": err.Error()})
	}
	logs.SetLevel(cfg.LogLevel)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	if err := database.Connect(cfg.DBUrl); err != nil {
		logs.LogJSON("FATAL", "Database connection failed", map[string]interface{}{"error": err.Error()})
	}
	if cfg.AutoMigrate {
		err := database.Migrate(
			&user.User{},
			&post.Post{}, &post.Comment{},
			&like.Like{}, &bookmark.Bookmark{}, &follow.Follow{},
			&event.Event{}, &event.Participant{},
			&forum.Forum{}, &forum.Message{},
			&report.Report{},
		)
		if err != nil {
			logs.LogJSON("FATAL", "Database migration failed", map[string]interface{}{"error": err.Error()})
		}
	}

	// Sans Redis, la déconnexion efface seulement le cookie.
	var revoker session.Revoker = session.NopRevoker{}
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logs.LogJSON("FATAL", "Redis connection failed", map[string]interface{}{"error": err.Error()})
		}
		defer client.Close()
		revoker = session.NewRedisRevoker(client)
	} else {
		logs.LogJSON("WARN", "REDIS_URL not set, token revocation disabled", nil)
	}

	if cfg.MediaEnabled() {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.AWSBucket,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			logs.LogJSON("FATAL", "S3 client setup failed", map[string]interface{}{"error": err.Error()})
		}
		storage.Media = store
	}

	secret := []byte(cfg.JWTSecret)
	resolver := session.NewResolver(secret, cfg.SessionCookie, revoker)
	authHandler := auth.NewHandler(session.NewIssuer(secret, cfg.TokenTTL), resolver, revoker, auth.CookieConfig{
		Name:   cfg.SessionCookie,
		Secure: cfg.CookieSecure,
	})

	limiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute)
	limiter.StartCleanup(5 * time.Minute)
	defer limiter.Stop()

	r := newRouter(cfg, resolver, authHandler, limiter)

	if err := serve(cfg.Port, r); err != nil {
		logs.LogJSON("FATAL", "Server stopped with error", map[string]interface{}{"error": err.Error()})
	}
}

// serve bloque jusqu'à SIGINT ou SIGTERM puis laisse 30s aux requêtes en cours.
func serve(port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.LogJSON("INFO", "Starting HTTP server", map[string]interface{}{"port": port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logs.LogJSON("INFO", "Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
