// Package scheduler enqueues periodic jobs onto a worker pool
package scheduler

import (
	"sync"
	"time"

	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/worker"
)

// LogMsgJobDropped is logged when a tick finds the pool queue full
const LogMsgJobDropped = "Skipping scheduled job, previous run still queued"

// Scheduler manages scheduled jobs
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval. With immediate set
// the first run is enqueued right away instead of after one interval.
// A tick that finds the queue full is skipped so slow runs never pile up.
func (s *Scheduler) Schedule(name string, interval time.Duration, job worker.Job, immediate bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if immediate {
			s.enqueue(name, job)
		}
		for {
			select {
			case <-ticker.C:
				s.enqueue(name, job)
			case <-s.quit:
				return
			}
		}
	}()
}

func (s *Scheduler) enqueue(name string, job worker.Job) {
	if !s.workerPool.Enqueue(job) {
		logger.Warn(LogMsgJobDropped, "job", name)
	}
}

// Stop stops all scheduled jobs
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}
