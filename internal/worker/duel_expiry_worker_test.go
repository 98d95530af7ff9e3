package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
)

const testWindow = 30 * time.Millisecond

type fakeExpirer struct {
	mu       sync.Mutex
	pending  []domain.Duel
	expired  []uuid.UUID
	calls    chan uuid.UUID
	failures int
}

func newFakeExpirer(pending ...domain.Duel) *fakeExpirer {
	return &fakeExpirer{pending: pending, calls: make(chan uuid.UUID, 10)}
}

func (f *fakeExpirer) ExpireDuel(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return false, errors.New("connection reset")
	}
	f.expired = append(f.expired, id)
	f.mu.Unlock()
	f.calls <- id
	return true, nil
}

func (f *fakeExpirer) ListPendingDuels(context.Context) ([]domain.Duel, error) {
	return f.pending, nil
}

func (f *fakeExpirer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.expired)
}

func pendingDuel(issuedAt time.Time) *domain.Duel {
	return &domain.Duel{
		ID:           uuid.New(),
		CommunityID:  "guild",
		ChallengerID: "alice",
		ChallengeeID: "bob",
		Status:       domain.DuelStatusPending,
		IssuedAt:     issuedAt,
	}
}

func shutdown(t *testing.T, w interface{ Shutdown(context.Context) error }) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.Shutdown(ctx))
}

func TestDuelExpiryWorker_ExpiresUnansweredChallenge(t *testing.T) {
	duels := newFakeExpirer()
	bus := event.NewMemoryBus()
	w := NewDuelExpiryWorker(duels, testWindow)
	w.Subscribe(bus)
	defer shutdown(t, w)

	d := pendingDuel(time.Now())
	require.NoError(t, bus.Publish(context.Background(), event.NewDuelEvent(event.DuelChallenged, d)))
	assert.Equal(t, 1, w.pending())

	select {
	case id := <-duels.calls:
		assert.Equal(t, d.ID, id)
	case <-time.After(time.Second):
		t.Fatal("challenge was never expired")
	}
	assert.Eventually(t, func() bool { return w.pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDuelExpiryWorker_AnsweredChallengeIsNotExpired(t *testing.T) {
	for _, answer := range []event.Type{event.DuelAccepted, event.DuelWithdrawn, event.DuelDeclined} {
		t.Run(string(answer), func(t *testing.T) {
			duels := newFakeExpirer()
			bus := event.NewMemoryBus()
			w := NewDuelExpiryWorker(duels, testWindow)
			w.Subscribe(bus)
			defer shutdown(t, w)

			d := pendingDuel(time.Now())
			ctx := context.Background()
			require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(event.DuelChallenged, d)))
			require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(answer, d)))

			time.Sleep(3 * testWindow)
			assert.Zero(t, duels.count())
			assert.Zero(t, w.pending())
		})
	}
}

func TestDuelExpiryWorker_StartReschedulesPending(t *testing.T) {
	overdue := pendingDuel(time.Now().Add(-time.Hour))
	fresh := pendingDuel(time.Now().Add(time.Hour))
	duels := newFakeExpirer(*overdue, *fresh)

	w := NewDuelExpiryWorker(duels, testWindow)
	require.NoError(t, w.Start(context.Background()))

	select {
	case id := <-duels.calls:
		assert.Equal(t, overdue.ID, id)
	case <-time.After(time.Second):
		t.Fatal("overdue challenge was not expired on startup")
	}

	assert.Eventually(t, func() bool { return w.pending() == 1 }, time.Second, 5*time.Millisecond)
	shutdown(t, w)
	assert.Equal(t, 1, duels.count(), "shutdown cancels the remaining timer")
}

func TestDuelExpiryWorker_ShutdownIsIdempotent(t *testing.T) {
	w := NewDuelExpiryWorker(newFakeExpirer(), testWindow)
	shutdown(t, w)
	shutdown(t, w)

	w.scheduleExpiry(uuid.New(), time.Now())
	assert.Zero(t, w.pending(), "no timers after shutdown")
}

func TestDuelExpiryWorker_RetriesFailedExpiry(t *testing.T) {
	duels := newFakeExpirer()
	duels.failures = 2
	bus := event.NewMemoryBus()
	w := NewDuelExpiryWorker(duels, testWindow)
	w.retryBase = 5 * time.Millisecond
	w.retryMax = 20 * time.Millisecond
	w.Subscribe(bus)
	defer shutdown(t, w)

	d := pendingDuel(time.Now())
	require.NoError(t, bus.Publish(context.Background(), event.NewDuelEvent(event.DuelChallenged, d)))

	select {
	case id := <-duels.calls:
		assert.Equal(t, d.ID, id)
	case <-time.After(time.Second):
		t.Fatal("expiry was not retried after failures")
	}
	assert.Equal(t, 1, duels.count())
	assert.Eventually(t, func() bool { return w.pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDuelExpiryWorker_AnswerCancelsRetry(t *testing.T) {
	duels := newFakeExpirer()
	duels.failures = 1
	bus := event.NewMemoryBus()
	w := NewDuelExpiryWorker(duels, testWindow)
	w.retryBase = time.Hour
	w.Subscribe(bus)
	defer shutdown(t, w)

	d := pendingDuel(time.Now())
	require.NoError(t, bus.Publish(context.Background(), event.NewDuelEvent(event.DuelChallenged, d)))
	require.Eventually(t, func() bool {
		duels.mu.Lock()
		defer duels.mu.Unlock()
		return duels.failures == 0 && w.pending() == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), event.NewDuelEvent(event.DuelAccepted, d)))
	assert.Equal(t, 0, w.pending())
	assert.Equal(t, 0, duels.count())
}
