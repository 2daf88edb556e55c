package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingScript trims expired entries and records the hit only when the window
// still has room, so rejected calls do not extend the penalty.
var slidingScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local n = redis.call('ZCARD', KEYS[1])
if n < tonumber(ARGV[3]) then
  redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
  redis.call('PEXPIRE', KEYS[1], ARGV[5])
  return {1, n + 1}
end
return {0, n}
`)

// Limiter implements a sliding window rate limiter backed by Redis sorted sets.
type Limiter struct {
	Client redis.UniversalClient
	Prefix string
	Now    func() time.Time
}

// Allow registers an event for key and reports whether it fits in the window.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	reset = now.Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, reset, nil
	}

	cutoff := now.Add(-window).UnixMilli()
	member := fmt.Sprintf("%d:%s", now.UnixMilli(), uuid.NewString())
	res, err := slidingScript.Run(ctx, l.Client, []string{l.Prefix + key},
		strconv.FormatInt(cutoff, 10),
		strconv.FormatInt(now.UnixMilli(), 10),
		max,
		member,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, reset, err
	}
	if len(res) != 2 {
		return false, 0, reset, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}
	remaining = max - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return res[0] == 1, remaining, reset, nil
}
