// Package lock provides a Redis-backed lock that keeps scheduled runs from overlapping
// when more than one replica is deployed.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ibs-source/bindicator/internal/config"
	"github.com/ibs-source/bindicator/internal/log"
)

var (
	// ErrNotAcquired means another holder owns the lock.
	ErrNotAcquired = errors.New("lock held by another run")
	// ErrLost means the lock expired or was taken over before release.
	ErrLost = errors.New("lock lost before release")
)

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseFunc gives the lock back.
type ReleaseFunc func(ctx context.Context) error

// Locker acquires a single named lock with a TTL.
type Locker struct {
	rdb *redis.Client
	key string
	ttl time.Duration
	log *log.Logger
}

// NewLocker connects to Redis and verifies the connection.
func NewLocker(cfg config.LockConfig, logger *log.Logger) (*Locker, error) {
	if logger == nil {
		logger = log.Discard()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddress,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		PoolSize:    1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Locker{
		rdb: rdb,
		key: cfg.Key,
		ttl: cfg.TTL,
		log: logger,
	}, nil
}

// Acquire takes the lock or returns ErrNotAcquired. The returned release only
// deletes the key while it still carries this holder's token.
func (l *Locker) Acquire(ctx context.Context) (ReleaseFunc, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	l.log.DebugWithFields(logrus.Fields{"key": l.key, "ttl": l.ttl.String()}, "Run lock acquired")

	return func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Int64()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", l.key, err)
		}
		if deleted == 0 {
			return ErrLost
		}
		l.log.DebugWithFields(logrus.Fields{"key": l.key}, "Run lock released")
		return nil
	}, nil
}

// Close closes the Redis connection.
func (l *Locker) Close() error {
	return l.rdb.Close()
}
