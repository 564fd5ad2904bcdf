package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Revoker conserve les identifiants (jti) des jetons invalidés à la déconnexion.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NopRevoker est utilisé sans Redis : aucune révocation, les jetons vivent
// jusqu'à leur expiration.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type RedisRevoker struct {
	client goredis.UniversalClient
	prefix string
}

func NewRedisRevoker(client goredis.UniversalClient) *RedisRevoker {
	return &RedisRevoker{client: client, prefix: "campusfeed:revoked:"}
}

// Revoke garde le jti jusqu'à l'expiration naturelle du jeton ; au-delà la
// vérification de signature le rejette de toute façon.
func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, r.prefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
}
