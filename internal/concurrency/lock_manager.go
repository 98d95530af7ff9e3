package concurrency

import (
	"context"
	"sync"
)

// Locker serializes work on a named key. The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockManager handles named in-process locks
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Lock implements Locker. It gives up when ctx ends before the mutex is free.
func (lm *LockManager) Lock(ctx context.Context, key string) (func(), error) {
	mu := lm.GetLock(key)
	if mu.TryLock() {
		return mu.Unlock, nil
	}

	acquired := make(chan struct{})
	go func() {
		mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return mu.Unlock, nil
	case <-ctx.Done():
		// The waiter still takes the mutex eventually; hand it straight back.
		go func() {
			<-acquired
			mu.Unlock()
		}()
		return nil, ctx.Err()
	}
}

// Chain acquires each locker in order and releases them in reverse
type Chain []Locker

// Lock implements Locker
func (c Chain) Lock(ctx context.Context, key string) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, l := range c {
		unlock, err := l.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

var (
	_ Locker = (*LockManager)(nil)
	_ Locker = Chain(nil)
)
