package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenDenylist remembers revoked access-token ids until they would have
// expired anyway.
type TokenDenylist struct {
	c *cache.Cache
}

func NewTokenDenylist(cleanupInterval time.Duration) *TokenDenylist {
	return &TokenDenylist{c: cache.New(cache.NoExpiration, cleanupInterval)}
}

// Revoke denies jti until expiresAt. Already-expired tokens are ignored.
func (d *TokenDenylist) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	d.c.Set(jti, struct{}{}, ttl)
}

func (d *TokenDenylist) IsRevoked(jti string) bool {
	_, found := d.c.Get(jti)
	return found
}
