package favorites

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "favorites:"

// RedisBackend keeps each owner's set under "favorites:<owner>" with no
// expiry.
type RedisBackend struct {
	Client *redis.Client
}

func (b *RedisBackend) Read(ctx context.Context, owner string) ([]byte, error) {
	data, err := b.Client.Get(ctx, redisKeyPrefix+owner).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *RedisBackend) Write(ctx context.Context, owner string, payload []byte) error {
	return b.Client.Set(ctx, redisKeyPrefix+owner, payload, 0).Err()
}
