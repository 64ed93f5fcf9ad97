// Package cache layers Redis in front of Postgres for two concerns: bearer
// token revocation (forced logout) and a cache-aside read-through for
// document baseline hashes, grounded on the teacher's
// internal/auth/store/revocation/store_redis.go.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "vigil:trl:jti:"

// TokenRevocationList is a Redis-backed implementation of the
// auth.RevocationChecker interface plus the write side (RevokeToken) the
// out-of-scope credential-administration flow calls on forced logout.
type TokenRevocationList struct {
	client *redis.Client
}

// NewTokenRevocationList wraps client. A nil client (Redis not configured)
// is valid; IsTokenRevoked then always reports not-revoked, matching the
// RevocationChecker=nil "skip the check" path in the auth middleware.
func NewTokenRevocationList(client *redis.Client) *TokenRevocationList {
	return &TokenRevocationList{client: client}
}

// RevokeToken marks jti as revoked for ttl.
func (t *TokenRevocationList) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if t.client == nil || jti == "" {
		return nil
	}
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsTokenRevoked implements auth.RevocationChecker.
func (t *TokenRevocationList) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if t.client == nil || jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
