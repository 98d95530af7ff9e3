package worker

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// NextFunc returns the first boundary strictly after now
type NextFunc func(now time.Time) time.Time

// MonthlyAt fires on the given day of every month at hour:00 UTC.
// day must be between 1 and 28.
func MonthlyAt(day, hour int) NextFunc {
	return func(now time.Time) time.Time {
		now = now.UTC()
		next := time.Date(now.Year(), now.Month(), day, hour, 0, 0, 0, time.UTC)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month()+1, day, hour, 0, 0, 0, time.UTC)
		}
		return next
	}
}

// WeeklyAt fires every week on weekday at hour:00 UTC
func WeeklyAt(weekday time.Weekday, hour int) NextFunc {
	return func(now time.Time) time.Time {
		now = now.UTC()
		days := (int(weekday) - int(now.Weekday()) + 7) % 7
		next := time.Date(now.Year(), now.Month(), now.Day()+days, hour, 0, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	}
}

// CalendarWorker runs a job on fixed calendar boundaries
type CalendarWorker struct {
	name    string
	next    NextFunc
	run     func(ctx context.Context, at time.Time) error
	catchUp time.Duration
	now     func() time.Time

	timer     *time.Timer
	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	mu        sync.Mutex
}

// NewCalendarWorker creates a worker that calls run at every boundary
// produced by next. With a non-zero catchUp, Start also runs a boundary
// missed less than catchUp ago.
func NewCalendarWorker(name string, next NextFunc, catchUp time.Duration, run func(ctx context.Context, at time.Time) error) *CalendarWorker {
	return &CalendarWorker{
		name:     name,
		next:     next,
		run:      run,
		catchUp:  catchUp,
		now:      time.Now,
		shutdown: make(chan struct{}),
	}
}

// ResetRunner is the part of the reset service the monthly worker drives
type ResetRunner interface {
	ResetAll(ctx context.Context, now time.Time) ([]domain.ResetResult, error)
}

// NewMonthlyResetWorker resets every community on day at hour:00 UTC
func NewMonthlyResetWorker(svc ResetRunner, day, hour int) *CalendarWorker {
	return NewCalendarWorker(workerNameMonthlyReset, MonthlyAt(day, hour), MonthlyResetCatchUp,
		func(ctx context.Context, at time.Time) error {
			results, err := svc.ResetAll(ctx, at)
			skipped := 0
			for _, r := range results {
				if r.Skipped {
					skipped++
				}
			}
			logger.FromContext(ctx).Info(LogMsgCalendarCompleted,
				"worker", workerNameMonthlyReset, "communities", len(results), "skipped", skipped)
			return err
		})
}

// StandingsPublisher is the part of the points service the weekly worker drives
type StandingsPublisher interface {
	PublishWeeklyStandings(ctx context.Context) (int, error)
}

// NewWeeklyStandingsWorker publishes leaderboards every weekday at hour:00 UTC
func NewWeeklyStandingsWorker(svc StandingsPublisher, weekday time.Weekday, hour int) *CalendarWorker {
	return NewCalendarWorker(workerNameWeeklyStandings, WeeklyAt(weekday, hour), 0,
		func(ctx context.Context, _ time.Time) error {
			n, err := svc.PublishWeeklyStandings(ctx)
			logger.FromContext(ctx).Info(LogMsgCalendarCompleted, "worker", workerNameWeeklyStandings, "published", n)
			return err
		})
}

// Start runs a recently missed boundary if catch-up is enabled, then
// schedules the next one
func (w *CalendarWorker) Start() {
	now := w.now()
	if w.catchUp > 0 {
		if missed := w.next(now.Add(-w.catchUp)); !missed.After(now) {
			logger.Info(LogMsgCalendarCatchUp, "worker", w.name, "boundary", missed)
			w.execute(missed)
		}
	}
	w.scheduleNext()
}

func (w *CalendarWorker) scheduleNext() {
	w.scheduleAfter(w.now())
}

// scheduleAfter arms the timer for the first boundary after from. It uses
// two stages so a long timer that fires early never turns into a tight
// rescheduling loop.
func (w *CalendarWorker) scheduleAfter(from time.Time) {
	target := w.next(from)
	duration := target.Sub(w.now())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isShuttingDown() {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}

	if duration > standbyThreshold {
		wait := duration - standbyLead
		w.timer = time.AfterFunc(wait, w.scheduleNext)
		logger.Info(LogMsgCalendarStandby, "worker", w.name, "next_check_at", w.now().Add(wait).UTC())
		return
	}

	w.timer = time.AfterFunc(duration, func() {
		if w.now().Before(target.Add(-earlyTolerance)) {
			w.scheduleNext()
			return
		}
		w.execute(target)
		w.scheduleAfter(target)
	})
	logger.Info(LogMsgCalendarApproach, "worker", w.name, "next_run_at", target)
}

// execute runs the job in a tracked goroutine
func (w *CalendarWorker) execute(at time.Time) {
	w.mu.Lock()
	if w.isShuttingDown() {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), calendarRunTimeout)
		defer cancel()
		ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
		log := logger.FromContext(ctx)

		log.Info(LogMsgCalendarStarting, "worker", w.name, "boundary", at)
		if err := w.run(ctx, at); err != nil {
			log.Error(LogMsgCalendarFailed, "worker", w.name, "error", err)
		}
	}()
}

// isShuttingDown must be called with mu held
func (w *CalendarWorker) isShuttingDown() bool {
	select {
	case <-w.shutdown:
		return true
	default:
		return false
	}
}

// Shutdown cancels the pending timer and waits for an in-flight run
func (w *CalendarWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down " + w.name)

	w.mu.Lock()
	w.closeOnce.Do(func() { close(w.shutdown) })
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(w.name + " shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn(w.name + " shutdown timeout, a run may still be in progress")
		return ctx.Err()
	}
}
