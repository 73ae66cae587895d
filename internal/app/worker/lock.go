package worker

import (
	"context"
	"time"

	"catalog_api/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// RedisLock is a single-holder lock: SET NX PX to acquire, compare-and-delete to release.
type RedisLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

func (l *RedisLock) Acquire(ctx context.Context) (func(), bool, error) {
	value := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, value, l.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}

	release := func() {
		deleted, err := releaseScript.Run(context.Background(), l.rdb, []string{l.key}, value).Int64()
		if err != nil {
			logger.WithError(err).WithField("lock", l.key).Error("failed to release lock")
		} else if deleted == 0 {
			logger.WithField("lock", l.key).Warn("lock expired before release")
		}
	}
	return release, true, nil
}
