package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == false then
	return 0
end
if v == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return -1
`)

// Redis is a Locker shared by every instance connected to the same server.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed locker.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return false, "", nil
	}
	return true, token, nil
}

func (r *Redis) Unlock(ctx context.Context, key, token string) error {
	res, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	if res == -1 {
		return ErrNotOwner
	}
	return nil
}
