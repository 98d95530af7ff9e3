package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/DuelBot_Go/internal/logger"
)

// BaseWorker provides common functionality for background workers that manage timers
type BaseWorker struct {
	mu        sync.Mutex
	timers    map[uuid.UUID]*time.Timer
	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func (w *BaseWorker) init() {
	if w.timers == nil {
		w.timers = make(map[uuid.UUID]*time.Timer)
	}
	if w.shutdown == nil {
		w.shutdown = make(chan struct{})
	}
}

// schedule runs fn in a tracked goroutine after d, replacing any timer
// already registered for id. fn never starts once shutdown has begun.
func (w *BaseWorker) schedule(id uuid.UUID, d time.Duration, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isShuttingDown() {
		return
	}
	if existing, ok := w.timers[id]; ok {
		existing.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		w.mu.Lock()
		if w.timers[id] == timer {
			delete(w.timers, id)
		}
		if w.isShuttingDown() {
			w.mu.Unlock()
			return
		}
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		fn()
	})
	w.timers[id] = timer
}

func (w *BaseWorker) stopTimer(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	timer, ok := w.timers[id]
	if ok {
		timer.Stop()
		delete(w.timers, id)
	}
	return ok
}

func (w *BaseWorker) pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

// isShuttingDown must be called with mu held
func (w *BaseWorker) isShuttingDown() bool {
	select {
	case <-w.shutdown:
		return true
	default:
		return false
	}
}

func (w *BaseWorker) shutdownInternal(ctx context.Context, workerName string) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down " + workerName)

	w.mu.Lock()
	w.closeOnce.Do(func() { close(w.shutdown) })
	for id, timer := range w.timers {
		timer.Stop()
		log.Debug("Cancelled pending "+workerName+" execution", "id", id)
	}
	w.timers = make(map[uuid.UUID]*time.Timer)
	w.mu.Unlock()

	// Wait for in-flight executions
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(workerName + " shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn(workerName + " shutdown timeout")
		return ctx.Err()
	}
}
