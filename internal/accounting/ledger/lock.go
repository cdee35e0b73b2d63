package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

// ErrRebuildInProgress is returned when another rebuild holds the lock for
// the same scope.
var ErrRebuildInProgress = fmt.Errorf("%w: ledger rebuild already in progress", httpx.ErrStateConflict)

// Locker serializes ledger rebuilds across processes. Acquire returns a
// release function, or ErrRebuildInProgress when the lock stayed held past
// the wait budget.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// RedisLocker serializes through a single redis SET NX key per scope. A
// contended Acquire polls until the holder releases or the wait budget runs
// out, so a rebuild queued behind another one still runs.
type RedisLocker struct {
	client *redis.Client
	retry  time.Duration
	wait   time.Duration
}

// NewRedisLocker builds a locker with the default retry cadence. The stored
// token guards release so an expired holder cannot delete a lock it no
// longer owns.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		retry:  200 * time.Millisecond,
		wait:   15 * time.Second,
	}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("ledger: acquire lock: %w", err)
		}
		if ok {
			return func() {
				_ = releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Err()
			}, nil
		}
		if !time.Now().Add(l.retry).Before(deadline) {
			return nil, ErrRebuildInProgress
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
