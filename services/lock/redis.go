package locksvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/youbihi/attest/core"
)

type redisLocker struct {
	client *redis.Client
}

var _ core.Locker = (*redisLocker)(nil)

// NewRedisLocker connects to redis and verifies the connection before
// returning the locker.
func NewRedisLocker(conf *core.Config) (*redisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &redisLocker{client: client}, nil
}

func (l *redisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, "lock:"+key, "1", ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "acquiring lock "+key)
	}
	return ok, nil
}

func (l *redisLocker) Unlock(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, "lock:"+key).Err(); err != nil {
		return errors.Wrap(err, "releasing lock "+key)
	}
	return nil
}

func (l *redisLocker) Close() error {
	return l.client.Close()
}
