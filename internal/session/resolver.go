package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusnet/CampusFeed-Back/internal/logs"
)

type Resolver struct {
	secret     []byte
	cookieName string
	revoker    Revoker
}

func NewResolver(secret []byte, cookieName string, revoker Revoker) *Resolver {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	return &Resolver{secret: secret, cookieName: cookieName, revoker: revoker}
}

// Credential retourne le jeton du cookie de session, sinon celui de
// l'en-tête "Authorization: Bearer". Chaîne vide si aucun.
func Credential(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// Resolve convertit la requête en Principal. Échoue avec ErrUnauthenticated
// sans jeton, ErrInvalidToken si le jeton est invalide, expiré ou révoqué.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (Principal, error) {
	claims, err := r.Claims(ctx, req)
	if err != nil {
		return Principal{}, err
	}
	return claims.Principal(), nil
}

// Claims est Resolve sans la conversion en Principal ; la déconnexion en a
// besoin pour révoquer le jeton.
func (r *Resolver) Claims(ctx context.Context, req *http.Request) (*Claims, error) {
	tokenStr := Credential(req, r.cookieName)
	if tokenStr == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := ParseToken(tokenStr, r.secret)
	if err != nil {
		return nil, err
	}

	if claims.ID != "" {
		revoked, err := r.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Révocation indisponible : le jeton reste accepté jusqu'à son expiration.
			logs.LogJSON("WARN", "Revocation lookup failed", map[string]interface{}{
				"error":  err.Error(),
				"userID": claims.UserID,
			})
		} else if revoked {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}
