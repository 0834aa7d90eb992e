package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const claimPrefix = "docgen:loan:"

// releaseScript deletes the key only while it still holds our token, so an
// expired claim re-taken by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LoanClaimer hands out short-lived per-loan processing claims.
type LoanClaimer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLoanClaimer(rdb *redis.Client, ttl time.Duration) *LoanClaimer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LoanClaimer{rdb: rdb, ttl: ttl}
}

func ClaimKey(loanID string) string { return claimPrefix + loanID }

// Claim takes the claim for loanID. ok is false when another holder has it.
// release must be called once processing ends.
func (c *LoanClaimer) Claim(ctx context.Context, loanID, token string) (release func(context.Context), ok bool, err error) {
	key := ClaimKey(loanID)
	ok, err = c.rdb.SetNX(ctx, key, token, c.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("claim %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func(ctx context.Context) {
		_ = releaseScript.Run(ctx, c.rdb, []string{key}, token).Err()
	}, true, nil
}
