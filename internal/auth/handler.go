package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/database"
	"github.com/campusnet/CampusFeed-Back/internal/logs"
	"github.com/campusnet/CampusFeed-Back/internal/session"
	"github.com/campusnet/CampusFeed-Back/internal/user"
)

const minPasswordLength = 8

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	issuer     *session.Issuer
	resolver   *session.Resolver
	revoker    session.Revoker
	cookie     CookieConfig
	bcryptCost int
}

func NewHandler(issuer *session.Issuer, resolver *session.Resolver, revoker session.Revoker, cookie CookieConfig) *Handler {
	if revoker == nil {
		revoker = session.NopRevoker{}
	}
	return &Handler{
		issuer:   issuer,
		resolver: resolver,
		revoker:  revoker,
		cookie:   cookie,
	}
}

func (h *Handler) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(time.Until(expiresAt).Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

// Signup : Inscription
func (h *Handler) Signup(c *gin.Context) {
	ctx := c.Request.Context()

	var input struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Username  string `json:"username"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		City      string `json:"city"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if input.Email == "" || input.Password == "" || input.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email invalide"})
		return
	}
	if len(input.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mot de passe trop court"})
		return
	}

	// Vérification que email et username n'existent pas
	if exists, err := user.ExistsByEmail(ctx, database.DB, input.Email); err != nil {
		h.serverError(c, "Error checking email", err)
		return
	} else if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email déjà utilisé"})
		return
	}
	if exists, err := user.ExistsByUsername(ctx, database.DB, input.Username); err != nil {
		h.serverError(c, "Error checking username", err)
		return
	} else if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Nom d'utilisateur déjà utilisé"})
		return
	}

	hash, err := HashPassword(input.Password, h.bcryptCost)
	if err != nil {
		h.serverError(c, "Error hashing password", err)
		return
	}

	newUser := user.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		City:         strings.TrimSpace(input.City),
		Role:         session.RoleUser,
	}
	if err := database.DB.WithContext(ctx).Create(&newUser).Error; err != nil {
		// Course entre la vérification et l'insertion : l'index unique tranche.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email ou nom d'utilisateur déjà utilisé"})
			return
		}
		h.serverError(c, "Error creating user", err)
		return
	}

	logs.LogJSON("INFO", "User signed up", map[string]interface{}{
		"userID":   newUser.ID,
		"username": newUser.Username,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Utilisateur inscrit 🎉",
		"user":    newUser,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	var u user.User
	err := database.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&u).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.serverError(c, "Error loading user for login", err)
		return
	}
	if err != nil || !CheckPassword(u.PasswordHash, input.Password) {
		logs.LogJSON("WARN", "Failed login", map[string]interface{}{
			"client_ip": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	role := u.Role
	if !role.IsValid() || role == session.RoleGuest {
		role = session.RoleUser
	}
	token, expiresAt, err := h.issuer.Issue(session.Principal{ID: u.ID, Role: role})
	if err != nil {
		h.serverError(c, "Error issuing token", err)
		return
	}
	h.setCookie(c, token, expiresAt)

	logs.LogJSON("INFO", "User logged in", map[string]interface{}{
		"userID": u.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user": gin.H{
			"id":       u.ID,
			"username": u.Username,
			"role":     role,
		},
	})
}

// Guest ouvre une session invité en lecture seule.
func (h *Handler) Guest(c *gin.Context) {
	token, expiresAt, err := h.issuer.Guest()
	if err != nil {
		h.serverError(c, "Error issuing guest token", err)
		return
	}
	h.setCookie(c, token, expiresAt)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       session.Guest(),
	})
}

// Logout efface le cookie et révoque le jeton présenté s'il est encore valide.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := h.resolver.Claims(ctx, c.Request)
	if err == nil && claims.ID != "" && claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := h.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
				logs.LogJSON("WARN", "Token revocation failed", map[string]interface{}{
					"userID": claims.UserID,
					"error":  err.Error(),
				})
			}
		}
	}

	h.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

func (h *Handler) serverError(c *gin.Context, message string, err error) {
	logs.LogJSON("ERROR", message, map[string]interface{}{
		"route": c.FullPath(),
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
}
