package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catalog_api/internal/common"
	"catalog_api/internal/platform/breaker"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// RedisKV is the subset of the go-redis client the session store needs.
type RedisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionRepository struct {
	rdb    RedisKV
	prefix string
	cb     *gobreaker.CircuitBreaker
}

// NewRedisSessionRepository stores refresh tokens under prefix+token with no expiry.
func NewRedisSessionRepository(rdb RedisKV, prefix string) SessionRepository {
	return &redisSessionRepository{
		rdb:    rdb,
		prefix: prefix,
		cb: breaker.New(breaker.Config{
			Name:    "redis-sessions",
			Timeout: 15 * time.Second,
		}),
	}
}

func (r *redisSessionRepository) key(token string) string {
	return r.prefix + token
}

func (r *redisSessionRepository) Save(ctx context.Context, token string, userID int) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.rdb.Set(ctx, r.key(token), strconv.Itoa(userID), 0).Err()
	})
	return r.wrap("save", err)
}

func (r *redisSessionRepository) FindUserID(ctx context.Context, token string) (int, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		val, err := r.rdb.Get(ctx, r.key(token)).Result()
		if errors.Is(err, redis.Nil) {
			// A missing key is an answer, not a backend failure.
			return "", nil
		}
		return val, err
	})
	if err != nil {
		return 0, r.wrap("find", err)
	}
	val := res.(string)
	if val == "" {
		return 0, common.ErrNotFound
	}
	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("redisSessionRepository.find: corrupt entry: %w", err)
	}
	return userID, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.rdb.Del(ctx, r.key(token)).Err()
	})
	return r.wrap("delete", err)
}

func (r *redisSessionRepository) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("redisSessionRepository.%s: %v: %w", op, err, common.ErrServiceUnavailable)
	}
	return fmt.Errorf("redisSessionRepository.%s: %w", op, err)
}
