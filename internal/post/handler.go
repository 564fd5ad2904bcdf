package post

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/apperr"
	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/feed"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/storage"
	"github.com/campusnet/CampusFeed-Back/internal/user"
	"github.com/campusnet/CampusFeed-Back/internal/utils"
)

// GetFeed GET /api/posts. Sans session valide, le fil est vide.
func GetFeed(c *gin.Context) {
	viewer, ok := session.Current(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"posts": []feed.Item{}})
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := feed.Rank(c.Request.Context(), database.DB, viewer, filters)
	if err != nil {
		logs.LogJSON("ERROR", "Feed query failed", map[string]interface{}{
			"userID": viewer.ID,
			"role":   viewer.Role,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items})
}

func parseFilters(c *gin.Context) (feed.Filters, error) {
	var f feed.Filters

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.New("user_id invalide")
		}
		f.TargetUserID = &id
	}

	f.Category = strings.TrimSpace(c.Query("category"))
	if raw := c.Query("categories"); raw != "" {
		f.AnyCategories = splitCategories(raw)
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.New("limit invalide")
		}
		f.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return f, errors.New("offset invalide")
		}
		f.Offset = offset
	}
	return f, nil
}

func splitCategories(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func viewerOrGuest(c *gin.Context) session.Principal {
	if p, ok := session.Current(c); ok {
		return p
	}
	return session.Guest()
}

// GetPostByID récupère un post spécifique par son ID
func GetPostByID(c *gin.Context) {
	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	item, err := feed.Get(c.Request.Context(), database.DB, viewerOrGuest(c), postID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
			return
		}
		logs.LogJSON("ERROR", "Error loading post", map[string]interface{}{
			"postID": postID,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": item})
}

type createPostInput struct {
	Body       string   `json:"body" form:"body"`
	Categories []string `json:"categories" form:"categories"`
}

// CreatePost accepte du JSON ou un formulaire multipart avec une image optionnelle.
func CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	var input createPostInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	input.Body = strings.TrimSpace(input.Body)
	if input.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le contenu est obligatoire"})
		return
	}

	// Les formulaires envoient souvent "a,b" dans un seul champ.
	categories := splitCategories(strings.Join(input.Categories, ","))
	if len(categories) > MaxCategories {
		c.JSON(http.StatusBadRequest, gin.H{"error": "4 catégories maximum"})
		return
	}

	newPost := Post{UserID: p.ID, Body: input.Body}
	newPost.SetCategories(categories, feed.SentinelCategory)

	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()

		url, err := storage.Upload(ctx, "posts", header.Filename, header.Header.Get("Content-Type"), file)
		switch {
		case errors.Is(err, storage.ErrMediaDisabled), errors.Is(err, storage.ErrInvalidExtension):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			logs.LogJSON("ERROR", "Post image upload failed", map[string]interface{}{
				"userID": p.ID,
				"error":  err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'upload"})
			return
		}
		newPost.ImageRef = &url
	}

	if err := database.DB.WithContext(ctx).Create(&newPost).Error; err != nil {
		// L'image déjà envoyée ne doit pas rester orpheline.
		if newPost.ImageRef != nil {
			_ = storage.Remove(ctx, *newPost.ImageRef)
		}
		logs.LogJSON("ERROR", "Error creating post", map[string]interface{}{
			"userID": p.ID,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du post"})
		return
	}

	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"userID": p.ID,
		"postID": newPost.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post créé avec succès",
		"post":    newPost,
	})
}

// DeletePost supprime un post et tout ce qui s'y rattache. Réservé à l'auteur ou à un admin.
func DeletePost(c *gin.Context) {
	ctx := c.Request.Context()
	p, _ := session.Current(c)

	postID, ok := utils.ParseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de post invalide"})
		return
	}

	var post Post
	if err := database.DB.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du post"})
		return
	}

	allowed, err := user.OwnerOrAdmin(ctx, database.DB, p, post.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification des droits"})
		return
	}
	if !allowed {
		logs.LogJSON("WARN", "Post deletion refused", map[string]interface{}{
			"userID": p.ID,
			"postID": postID,
		})
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous n'êtes pas autorisé à supprimer ce post"})
		return
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"likes", "bookmarks", "comments"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE post_id = ?", postID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		logs.LogJSON("ERROR", "Error deleting post", map[string]interface{}{
			"postID": postID,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du post"})
		return
	}

	if post.ImageRef != nil {
		if err := storage.Remove(ctx, *post.ImageRef); err != nil {
			// Le post est supprimé, l'objet orphelin ne bloque rien.
			logs.LogJSON("WARN", "Post image not deleted", map[string]interface{}{
				"postID": postID,
				"error":  err.Error(),
			})
		}
	}

	logs.LogJSON("INFO", "Post deleted", map[string]interface{}{
		"userID": p.ID,
		"postID": postID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Post supprimé avec succès"})
}
