// Package session résout l'identité (Principal) d'une requête à partir d'un
// jeton signé transporté dans un cookie ou un en-tête Authorization.
package session

import (
	"github.com/gin-gonic/gin"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// GuestID est l'identifiant synthétique des invités, jamais persisté.
const GuestID int64 = 0

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	default:
		return false
	}
}

type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func Guest() Principal {
	return Principal{ID: GuestID, Role: RoleGuest}
}

func (p Principal) IsGuest() bool {
	return p.Role == RoleGuest
}

const principalKey = "principal"

// Set enregistre le principal dans le contexte Gin. "user_id" reste exposé
// pour les logs de requêtes.
func Set(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.ID)
}

func Current(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
