// Package testutil regroupe l'outillage partagé des tests de handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/session"
)

// OpenDB ouvre une base SQLite en mémoire, migre models et la branche sur
// database.DB le temps du test.
func OpenDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models...))

	original := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = original
		_ = sqlDB.Close()
	})
	return db
}

// As simule le middleware d'authentification pour p.
func As(p session.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Set(c, p)
		c.Next()
	}
}

func Member(id int64) session.Principal {
	return session.Principal{ID: id, Role: session.RoleUser}
}

func Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// Do envoie body encodé en JSON (nil pour aucun corps).
func Do(r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func Decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
