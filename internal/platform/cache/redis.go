package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("platform/cache: lock held")

// Lock is a single-holder lease stored in Redis.
type Lock struct {
	client redis.Cmdable
	key    string
	token  string
}

// AcquireLock takes key for ttl using SET NX. The token identifies the holder
// so that Release never drops a lease taken over by someone else.
func AcquireLock(ctx context.Context, client redis.Cmdable, key, token string, ttl time.Duration) (*Lock, error) {
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("platform/cache: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: client, key: key, token: token}, nil
}

// Release drops the lease if it is still ours.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	current, err := l.client.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("platform/cache: release %s: %w", l.key, err)
	}
	if current != l.token {
		return nil
	}
	return l.client.Del(ctx, l.key).Err()
}
