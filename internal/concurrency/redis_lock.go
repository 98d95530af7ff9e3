package concurrency

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// unlockLua deletes a lock key only if it still holds the caller's token
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// Redis lock defaults
const (
	DefaultLockTTL       = 30 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond
	lockKeyPrefix        = "duelbot:lock:"
	unlockTimeout        = 5 * time.Second
)

// RedisConfig holds connection parameters for the lock store
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	TLSEnabled bool
}

// NewRedisClient connects and pings the lock store
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// RedisLocker is a cross-process Locker using SETNX with a TTL. Lock polls
// until the key is free or ctx ends.
type RedisLocker struct {
	rdb           *redis.Client
	unlock        *redis.Script
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLocker creates a RedisLocker. Zero durations take defaults.
func NewRedisLocker(rdb *redis.Client, ttl, retryInterval time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	return &RedisLocker{
		rdb:           rdb,
		unlock:        redis.NewScript(unlockLua),
		ttl:           ttl,
		retryInterval: retryInterval,
	}
}

// TryLock makes a single attempt. It returns domain.ErrLockHeld if another holder has the key.
func (l *RedisLocker) TryLock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	lk := lockKeyPrefix + key

	ok, err := l.rdb.SetNX(ctx, lk, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
			defer cancel()
			_ = l.unlock.Run(unlockCtx, l.rdb, []string{lk}, token).Err()
		})
	}, nil
}

// Lock implements Locker
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		unlock, err := l.TryLock(ctx, key)
		if err == nil {
			return unlock, nil
		}
		if err != domain.ErrLockHeld {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrLockHeld, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
