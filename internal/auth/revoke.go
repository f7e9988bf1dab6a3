package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker denylists token IDs in Redis until their natural expiry, which
// is the only server-side token state the service keeps.
type Revoker struct {
	rdb *redis.Client
}

func NewRevoker(rdb *redis.Client) *Revoker {
	return &Revoker{rdb: rdb}
}

// Revoke denylists a token ID for the remainder of its validity. Tokens
// already past expiry need no entry.
func (rv *Revoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return rv.rdb.Set(ctx, "revoked:"+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been denylisted.
func (rv *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := rv.rdb.Get(ctx, "revoked:"+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
