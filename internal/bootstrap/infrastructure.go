package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/DuelBot_Go/internal/archive"
	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/config"
	"github.com/osse101/DuelBot_Go/internal/handler"
	"github.com/osse101/DuelBot_Go/internal/judge"
)

// Locking holds the locker shared by the duel service and the reconcile
// engine. Redis is nil when locks are process-local.
type Locking struct {
	Locker concurrency.Locker
	Redis  *redis.Client
}

// ReadinessChecks returns the probes /readyz should run besides the database
func (l *Locking) ReadinessChecks() []handler.NamedCheck {
	if l.Redis == nil {
		return nil
	}
	rdb := l.Redis
	return []handler.NamedCheck{{
		Name:    "redis",
		Checker: handler.CheckFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}}
}

// Close releases the Redis connection if there is one
func (l *Locking) Close() error {
	if l.Redis == nil {
		return nil
	}
	return l.Redis.Close()
}

// InitializeLocking always takes the in-process lock first. With REDIS_ADDR
// set the Redis lock is chained behind it so that several API instances
// exclude each other.
func InitializeLocking(ctx context.Context, cfg *config.Config) (*Locking, error) {
	local := concurrency.NewLockManager()
	if cfg.RedisAddr == "" {
		slog.Warn(LogMsgRedisDisabled)
		return &Locking{Locker: local}, nil
	}

	rdb, err := concurrency.NewRedisClient(ctx, concurrency.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: RedisPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectRedis, err)
	}

	remote := concurrency.NewRedisLocker(rdb, cfg.Tuning.LockTTL.Std(), LockRetryInterval)
	slog.Info(LogMsgRedisEnabled, "addr", cfg.RedisAddr, "lock_ttl", cfg.Tuning.LockTTL.Std())
	return &Locking{
		Locker: concurrency.Chain{local, remote},
		Redis:  rdb,
	}, nil
}

// InitializeArchiver returns the S3 archiver, or a no-op when no bucket is set
func InitializeArchiver(ctx context.Context, cfg *config.Config) (archive.Archiver, error) {
	if cfg.ArchiveBucket == "" {
		slog.Warn(LogMsgArchiveDisabled)
		return archive.Nop{}, nil
	}

	archiver, err := archive.NewS3Archiver(ctx, archive.Config{
		Endpoint:       cfg.ArchiveEndpoint,
		Region:         cfg.ArchiveRegion,
		Bucket:         cfg.ArchiveBucket,
		AccessKey:      cfg.ArchiveAccessKey,
		SecretKey:      cfg.ArchiveSecretKey,
		ForcePathStyle: cfg.ArchivePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateArchive, err)
	}

	slog.Info(LogMsgArchiveEnabled, "bucket", cfg.ArchiveBucket, "endpoint", cfg.ArchiveEndpoint)
	return archiver, nil
}

// InitializeJudge wraps the Codeforces HTTP client in the TTL and LRU caches
func InitializeJudge(cfg *config.Config) judge.Client {
	return judge.NewCachedClient(
		judge.NewHTTPClient(cfg.JudgeBaseURL, cfg.JudgeTimeout),
		cfg.Tuning.CatalogTTL.Std(),
		cfg.Tuning.RatingTTL.Std(),
		RatingCacheSize,
	)
}
