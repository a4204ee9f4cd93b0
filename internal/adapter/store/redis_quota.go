package store

import (
	"context"
	"fmt"
	"time"

	"interview-gateway/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

// consumeScript resets an expired window, then compares and increments in one step.
// KEYS[1] quota hash; ARGV: now ms, limit, next reset ms.
// Returns {allowed, remaining, reset_at ms}.
var consumeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local reset = tonumber(redis.call('HGET', KEYS[1], 'reset_at') or '0')
if reset == 0 or now >= reset then
  count = 0
  reset = tonumber(ARGV[3])
end
local allowed = 0
if count < limit then
  count = count + 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'count', count, 'reset_at', reset)
local ttl = reset - now
if ttl < 1 then ttl = 1 end
redis.call('PEXPIRE', KEYS[1], ttl)
local remaining = limit - count
if allowed == 0 then remaining = 0 end
return {allowed, remaining, reset}
`)

// RedisQuotaStore shares quota counters between instances.
type RedisQuotaStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisQuotaStore(client *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{client: client, now: time.Now}
}

func NewRedisQuotaStoreWithClock(client *redis.Client, now func() time.Time) *RedisQuotaStore {
	return &RedisQuotaStore{client: client, now: now}
}

func (r *RedisQuotaStore) CheckAndConsume(ctx context.Context, key string, limit int) (entity.QuotaDecision, error) {
	now := r.now()
	next := entity.StartOfNextDay(now)

	res, err := consumeScript.Run(ctx, r.client, []string{"quota:" + key},
		now.UnixMilli(), limit, next.UnixMilli()).Int64Slice()
	if err != nil {
		return entity.QuotaDecision{}, fmt.Errorf("redis quota script: %w", err)
	}
	if len(res) != 3 {
		return entity.QuotaDecision{}, fmt.Errorf("redis quota script: unexpected reply %v", res)
	}

	return entity.QuotaDecision{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		ResetAt:   time.UnixMilli(res[2]).In(now.Location()),
	}, nil
}
