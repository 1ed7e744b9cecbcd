package enforce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucketScript runs the token bucket atomically server-side so concurrent
// checkers sharing one Redis agree on every decision.
// KEYS[1] bucket key, ARGV[1] refill rate per second, ARGV[2] capacity,
// ARGV[3] cost, ARGV[4] now in fractional seconds.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local state = redis.call("HMGET", key, "tokens", "refilled_at")
local tokens = tonumber(state[1])
local refilled_at = tonumber(state[2])

if not tokens or not refilled_at then
    tokens = capacity
    refilled_at = now
end

local elapsed = now - refilled_at
if elapsed > 0 then
    tokens = tokens + elapsed * rate
    if tokens > capacity then
        tokens = capacity
    end
    refilled_at = now
end

local allowed = 0
if tokens >= cost then
    tokens = tokens - cost
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "refilled_at", refilled_at)
redis.call("EXPIRE", key, 120)

return allowed
`)

// RedisLimiter backs BUDGET checks with a shared Redis so every checker in
// a fleet draws from the same buckets.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter connects to the Redis at addr.
func NewRedisLimiter(addr, password string, db int) *RedisLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisLimiter{client: client}
}

// Ping verifies connectivity.
func (s *RedisLimiter) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisLimiter) Close() error {
	return s.client.Close()
}

// Allow implements LimiterStore via the atomic bucket script.
func (s *RedisLimiter) Allow(ctx context.Context, actorID string, policy RatePolicy, cost int) (bool, error) {
	key := fmt.Sprintf("ctt:guard:budget:%s", actorID)
	now := float64(time.Now().UnixMicro()) / 1e6

	res, err := bucketScript.Run(ctx, s.client, []string{key}, policy.perSecond(), policy.Burst, cost, now).Int64()
	if err != nil {
		return false, fmt.Errorf("redis limiter: %w", err)
	}
	return res == 1, nil
}
