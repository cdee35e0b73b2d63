package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/shared"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := NewRedisLocker(client)
	// Fail fast under contention unless a test opts into waiting.
	locker.retry = 5 * time.Millisecond
	locker.wait = 0
	return locker, mr
}

func TestRedisLockerSerializesSameScope(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()
	key := shared.LedgerLockKey(1, 0)

	release, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, time.Minute)
	require.ErrorIs(t, err, ErrRebuildInProgress)

	release()

	release2, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerWaitsForHolderToRelease(t *testing.T) {
	locker, _ := newTestLocker(t)
	locker.wait = 2 * time.Second
	ctx := context.Background()
	key := shared.LedgerLockKey(4, 0)

	release, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	time.AfterFunc(30*time.Millisecond, release)

	// Queued behind the holder, not failed.
	release2, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerScopesAreIndependent(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, shared.LedgerLockKey(1, 0), time.Minute)
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Acquire(ctx, shared.LedgerLockKey(2, 0), time.Minute)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerExpiredHolderCannotRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()
	key := shared.LedgerLockKey(3, 0)

	release, err := locker.Acquire(ctx, key, time.Second)
	require.NoError(t, err)

	// Simulate TTL expiry and a new holder taking over.
	mr.FastForward(2 * time.Second)
	release2, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	defer release2()

	// The stale release must not free the new holder's lock.
	release()
	_, err = locker.Acquire(ctx, key, time.Minute)
	require.ErrorIs(t, err, ErrRebuildInProgress)
}
