package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "m-1")
			require.NoError(t, err)
			defer release()
			n := atomic.AddInt32(&inside, 1)
			for {
				old := atomic.LoadInt32(&maxInside)
				if n <= old || atomic.CompareAndSwapInt32(&maxInside, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside)
	assert.Zero(t, locker.size(), "entries are dropped once unused")
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, "b")
	require.NoError(t, err)
	releaseB()
	releaseB()
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	locker := NewKeyedMutex()
	release, err := locker.Acquire(context.Background(), "busy")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "busy")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodePersistence))
}

type fakeLockStore struct {
	mu      sync.Mutex
	owners  map[string]string
	failSet bool
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{owners: map[string]string{}}
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return false, errors.New("connection refused")
	}
	if _, ok := f.owners[key]; ok {
		return false, nil
	}
	f.owners[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeLockStore) ReleaseIfOwner(_ context.Context, key, owner string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owners[key] != owner {
		return false, nil
	}
	delete(f.owners, key)
	return true, nil
}

func (f *fakeLockStore) LockKey(scope, id string) string {
	return "dm:lock:" + scope + ":" + id
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(store, nil, RedisOptions{RetryInterval: time.Millisecond, WaitTimeout: 30 * time.Millisecond})
	require.NoError(t, err)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "m-1")
	require.NoError(t, err)
	assert.Contains(t, store.owners, "dm:lock:migration:m-1")

	_, err = locker.Acquire(ctx, "m-1")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodePersistence), "second holder times out")

	release()
	assert.Empty(t, store.owners)

	release2, err := locker.Acquire(ctx, "m-1")
	require.NoError(t, err)
	release2()
}

func TestRedisLockerStoreFailure(t *testing.T) {
	store := newFakeLockStore()
	store.failSet = true
	locker, err := NewRedisLocker(store, nil, RedisOptions{})
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), "m-1")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodePersistence))

	_, err = NewRedisLocker(nil, nil, RedisOptions{})
	assert.Error(t, err)
}
