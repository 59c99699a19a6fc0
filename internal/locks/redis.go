package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
	"github.com/angelmondragon/devicemove-backend/pkg/redis"
)

const (
	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	defaultWaitTimeout   = 5 * time.Second
)

// RedisOptions tune RedisLocker.
type RedisOptions struct {
	TTL           time.Duration
	RetryInterval time.Duration
	WaitTimeout   time.Duration
}

// RedisLocker serializes writers across processes with SETNX + TTL and an
// owner token, so an expired holder cannot release a successor's lock.
type RedisLocker struct {
	store redis.LockStore
	logg  *logger.Logger
	opts  RedisOptions
}

// NewRedisLocker constructs a RedisLocker.
func NewRedisLocker(store redis.LockStore, logg *logger.Logger, opts RedisOptions) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("redis store required for lock")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = defaultWaitTimeout
	}
	return &RedisLocker{store: store, logg: logg, opts: opts}, nil
}

// Acquire polls until the key is owned, the wait timeout elapses or ctx ends.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	lockKey := l.store.LockKey("migration", key)
	owner := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.opts.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(l.opts.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.store.SetNX(waitCtx, lockKey, owner, l.opts.TTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "acquire lock "+key)
		}
		if ok {
			return l.releaser(ctx, lockKey, owner), nil
		}
		select {
		case <-waitCtx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, waitCtx.Err(), fmt.Sprintf("timed out waiting for lock %s", key))
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(ctx context.Context, lockKey, owner string) Release {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		released, err := l.store.ReleaseIfOwner(relCtx, lockKey, owner)
		if err != nil {
			l.logg.Error(l.logg.WithField(ctx, "lock_key", lockKey), "failed to release lock", err)
			return
		}
		if !released {
			l.logg.Warn(l.logg.WithField(ctx, "lock_key", lockKey), "lock expired before release")
		}
	}
}
