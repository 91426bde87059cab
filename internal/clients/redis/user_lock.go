package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

// ErrLockTimeout is returned when a lock could not be taken before the wait ran out.
// It is a conflict: the caller may retry once the holder is done.
var ErrLockTimeout = fmt.Errorf("%w: lock wait timed out", apierr.ErrConflict)

// Locker serializes work on a key across processes.
type Locker interface {
	// Acquire blocks until key is held or ctx is done. The returned func releases it.
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
	Close() error
}

type userLock struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

// Deletes the key only if it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewUserLock connects to REDIS_ADDR. It returns a no-op locker when REDIS_ADDR is unset.
func NewUserLock(log *logger.Logger, ttl, wait time.Duration) (Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Info("REDIS_ADDR not set; profile updates rely on optimistic locking only")
		return NoopLocker{}, nil
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_LOCK_PREFIX"))
	if prefix == "" {
		prefix = "paperrec:lock:"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newUserLock(log, rdb, prefix, ttl, wait), nil
}

func newUserLock(log *logger.Logger, rdb *goredis.Client, prefix string, ttl, wait time.Duration) *userLock {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &userLock{
		log:    log.With("service", "RedisUserLock"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		wait:   wait,
		poll:   25 * time.Millisecond,
	}
}

func (l *userLock) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis lock not initialized")
	}
	full := l.prefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(waitCtx, full, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return func(rctx context.Context) error {
				return releaseScript.Run(rctx, l.rdb, []string{full}, token).Err()
			}, nil
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.log.Warn("lock wait timed out", "key", full)
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *userLock) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

// NoopLocker hands out locks without coordination.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

func (NoopLocker) Close() error { return nil }
