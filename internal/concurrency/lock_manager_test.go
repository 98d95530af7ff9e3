package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockManager_SameKeySerializes(t *testing.T) {
	lm := NewLockManager()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := lm.Lock(context.Background(), "duel-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestLockManager_DifferentKeysIndependent(t *testing.T) {
	lm := NewLockManager()

	unlockA, err := lm.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := lm.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLockManager_ContextCancelled(t *testing.T) {
	lm := NewLockManager()

	unlock, err := lm.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lm.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	// The abandoned waiter must not keep the key locked.
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	unlock2, err := lm.Lock(ctx2, "k")
	require.NoError(t, err)
	unlock2()
}

type fakeLocker struct {
	name  string
	fail  bool
	trace *[]string
}

func (f fakeLocker) Lock(_ context.Context, _ string) (func(), error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	*f.trace = append(*f.trace, "lock "+f.name)
	return func() { *f.trace = append(*f.trace, "unlock "+f.name) }, nil
}

func TestChain(t *testing.T) {
	t.Run("releases in reverse order", func(t *testing.T) {
		var trace []string
		chain := Chain{fakeLocker{name: "local", trace: &trace}, fakeLocker{name: "redis", trace: &trace}}

		unlock, err := chain.Lock(context.Background(), "k")
		require.NoError(t, err)
		unlock()

		assert.Equal(t, []string{"lock local", "lock redis", "unlock redis", "unlock local"}, trace)
	})

	t.Run("failure releases what was taken", func(t *testing.T) {
		var trace []string
		chain := Chain{fakeLocker{name: "local", trace: &trace}, fakeLocker{name: "redis", fail: true, trace: &trace}}

		_, err := chain.Lock(context.Background(), "k")
		require.Error(t, err)
		assert.Equal(t, []string{"lock local", "unlock local"}, trace)
	})
}
