// Package locks serializes writes per migration.
package locks

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

// GlobalKey guards operations that span every migration, such as creating one.
const GlobalKey = "global"

// Release frees a held lock. It is safe to call more than once.
type Release func()

// Locker grants exclusive access to a key until released.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

type entry struct {
	slot chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker with one mutex per key.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyedMutex constructs an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: map[string]*entry{}}
}

// Acquire blocks until key is free or ctx is done.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (Release, error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		k.drop(key, e)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, ctx.Err(), "timed out waiting for lock "+key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			k.drop(key, e)
		})
	}, nil
}

func (k *KeyedMutex) drop(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// size reports tracked keys; used by tests to check cleanup.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
