package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

func TestMonthlyAt(t *testing.T) {
	next := MonthlyAt(1, 10)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before boundary this month", time.Date(2026, 10, 1, 9, 59, 0, 0, time.UTC), time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"exactly on boundary", time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)},
		{"mid month", time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)},
		{"december rolls the year", time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"other zone is normalized", time.Date(2026, 10, 1, 12, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)), time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, next(tt.now))
		})
	}
}

func TestWeeklyAt(t *testing.T) {
	next := WeeklyAt(time.Friday, 10)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC), time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)},
		{"friday morning", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)},
		{"friday after boundary", time.Date(2026, 10, 16, 10, 0, 1, 0, time.UTC), time.Date(2026, 10, 23, 10, 0, 0, 0, time.UTC)},
		{"saturday", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 23, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, next(tt.now))
		})
	}
}

type fakeResetRunner struct {
	mu    sync.Mutex
	calls []time.Time
	done  chan struct{}
}

func (f *fakeResetRunner) ResetAll(_ context.Context, now time.Time) ([]domain.ResetResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, now)
	f.mu.Unlock()
	select {
	case f.done <- struct{}{}:
	default:
	}
	return []domain.ResetResult{{CommunityID: "a"}, {CommunityID: "b", Skipped: true}}, nil
}

func TestMonthlyResetWorker_CatchesUpMissedBoundary(t *testing.T) {
	runner := &fakeResetRunner{done: make(chan struct{}, 1)}
	w := NewMonthlyResetWorker(runner, 1, 10)
	w.now = func() time.Time { return time.Date(2026, 10, 1, 14, 0, 0, 0, time.UTC) }

	w.Start()
	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("missed reset was not run")
	}
	shutdown(t, w)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, []time.Time{time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)}, runner.calls)
}

func TestMonthlyResetWorker_NoCatchUpMidMonth(t *testing.T) {
	runner := &fakeResetRunner{done: make(chan struct{}, 1)}
	w := NewMonthlyResetWorker(runner, 1, 10)
	w.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }

	w.Start()
	shutdown(t, w)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Empty(t, runner.calls)
}

type fakeStandingsPublisher struct {
	calls chan struct{}
}

func (f *fakeStandingsPublisher) PublishWeeklyStandings(context.Context) (int, error) {
	f.calls <- struct{}{}
	return 1, nil
}

func TestCalendarWorker_RunsAtBoundary(t *testing.T) {
	pub := &fakeStandingsPublisher{calls: make(chan struct{}, 4)}
	w := NewWeeklyStandingsWorker(pub, time.Friday, 10)

	// the boundary is 20ms away
	base := time.Now()
	boundary := base.Add(20 * time.Millisecond)
	w.next = func(now time.Time) time.Time {
		if now.Before(boundary) {
			return boundary
		}
		return now.Add(time.Hour * 24 * 7)
	}

	w.Start()
	select {
	case <-pub.calls:
	case <-time.After(time.Second):
		t.Fatal("weekly standings never ran")
	}
	shutdown(t, w)
	assert.Empty(t, pub.calls, "ran exactly once")
}

func TestCalendarWorker_ShutdownIsIdempotent(t *testing.T) {
	w := NewWeeklyStandingsWorker(&fakeStandingsPublisher{calls: make(chan struct{}, 1)}, time.Friday, 10)
	w.Start()
	shutdown(t, w)
	shutdown(t, w)
}
