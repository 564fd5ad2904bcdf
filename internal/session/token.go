package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusnet/CampusFeed-Back/internal/apperr"
)

var (
	ErrUnauthenticated = apperr.ErrUnauthenticated
	ErrInvalidToken    = apperr.ErrInvalidToken
	ErrExpiredToken    = fmt.Errorf("%w: expired", apperr.ErrInvalidToken)
	ErrRevokedToken    = fmt.Errorf("%w: revoked", apperr.ErrInvalidToken)
)

type Claims struct {
	UserID int64 `json:"id"`
	Role   Role  `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signe un jeton HS256 pour p, valable ttl.
func (i *Issuer) Issue(p Principal) (string, time.Time, error) {
	if !p.Role.IsValid() {
		return "", time.Time{}, fmt.Errorf("issue token: unknown role %q", p.Role)
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		UserID: p.ID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (i *Issuer) Guest() (string, time.Time, error) {
	return i.Issue(Guest())
}

// ParseToken vérifie la signature et l'expiration d'un jeton.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleGuest && claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Claims) Principal() Principal {
	if c.Role == RoleGuest {
		return Guest()
	}
	return Principal{ID: c.UserID, Role: c.Role}
}
