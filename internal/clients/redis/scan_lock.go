package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ecoba/alumni-backend/internal/logger"
)

// ScanLock is a best-effort lease preventing two scan invocations from
// running at once. The profile_url unique index keeps the store correct
// without it; the lock only stops a second scan from wasting search and
// classification quota on overlapping work.
type ScanLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
	Close() error
}

type scanLock struct {
	log   *logger.Logger
	rdb   *goredis.Client
	key   string
	token string
}

func NewScanLock(log *logger.Logger) (ScanLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := strings.TrimSpace(os.Getenv("REDIS_SCAN_LOCK_KEY"))
	if key == "" {
		key = "alumni:scan:lock"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &scanLock{
		log:   log.With("service", "RedisScanLock"),
		rdb:   rdb,
		key:   key,
		token: fmt.Sprintf("%d", time.Now().UnixNano()),
	}, nil
}

func (l *scanLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if l == nil || l.rdb == nil {
		return false, fmt.Errorf("redis scan lock not initialized")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	ok, err := l.rdb.SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release deletes the lease only if this holder still owns it; an
// expired lease taken over by another scan is left alone.
func (l *scanLock) Release(ctx context.Context) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("redis scan lock not initialized")
	}
	const script = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`
	if err := l.rdb.Eval(ctx, script, []string{l.key}, l.token).Err(); err != nil {
		l.log.Warn("Failed to release scan lock", "error", err)
		return err
	}
	return nil
}

func (l *scanLock) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
