package lock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/lock"
)

func newLocker(t *testing.T) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Locker{R: client, Prefix: "lock:", RetryBackoff: 5 * time.Millisecond}, mr
}

func TestWithLockSerialises(t *testing.T) {
	locker, _ := newLocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var order []string
	var mu sync.Mutex
	firstDone := make(chan struct{})
	releaseFirst := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_ = locker.WithLock(ctx, "demo", time.Second, func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(firstDone)
			<-releaseFirst
			return nil
		})
	}()
	<-firstDone

	go func() {
		defer wg.Done()
		_ = locker.WithLock(ctx, "demo", time.Second, func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	close(releaseFirst)
	wg.Wait()

	require.Equal(t, []string{"first", "second"}, order)
}

func TestTryLockReportsBusy(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	inner := make(chan error, 1)
	err := locker.TryLock(ctx, "session-1", time.Second, func(ctx context.Context) error {
		require.True(t, mr.Exists("lock:session-1"))
		inner <- locker.TryLock(ctx, "session-1", time.Second, func(context.Context) error {
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, <-inner, lock.ErrLocked)
	require.False(t, mr.Exists("lock:session-1"))
}

func TestTryLockPropagatesCallbackError(t *testing.T) {
	locker, mr := newLocker(t)
	boom := errors.New("boom")
	err := locker.TryLock(context.Background(), "k", time.Second, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("lock:k"))
}

func TestReleaseKeepsForeignToken(t *testing.T) {
	locker, mr := newLocker(t)
	err := locker.TryLock(context.Background(), "k", time.Second, func(context.Context) error {
		require.NoError(t, mr.Set("lock:k", "someone-else"))
		return nil
	})
	require.NoError(t, err)
	got, err := mr.Get("lock:k")
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}
