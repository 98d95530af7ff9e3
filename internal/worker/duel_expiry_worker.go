package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// DuelExpirer is the part of the duel service the expiry worker drives
type DuelExpirer interface {
	ExpireDuel(ctx context.Context, id uuid.UUID) (bool, error)
	ListPendingDuels(ctx context.Context) ([]domain.Duel, error)
}

// DuelExpiryWorker keeps one timer per pending challenge and expires the
// challenge when nobody has answered it within the window
type DuelExpiryWorker struct {
	BaseWorker
	duels  DuelExpirer
	window time.Duration
	now    func() time.Time

	retryBase time.Duration
	retryMax  time.Duration
}

// NewDuelExpiryWorker creates a new DuelExpiryWorker
func NewDuelExpiryWorker(duels DuelExpirer, window time.Duration) *DuelExpiryWorker {
	w := &DuelExpiryWorker{
		duels:     duels,
		window:    window,
		now:       time.Now,
		retryBase: expiryRetryBase,
		retryMax:  expiryRetryMax,
	}
	w.init()
	return w
}

// Start schedules every challenge left pending by a previous process.
// Overdue challenges expire right away.
func (w *DuelExpiryWorker) Start(ctx context.Context) error {
	pending, err := w.duels.ListPendingDuels(ctx)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgFailedToListPendingDuels, "error", err)
		return err
	}
	for _, d := range pending {
		w.scheduleExpiry(d.ID, d.IssuedAt)
	}
	return nil
}

// Subscribe subscribes the worker to duel lifecycle events
func (w *DuelExpiryWorker) Subscribe(bus event.Bus) {
	bus.Subscribe(event.DuelChallenged, w.handleChallenged)
	for _, t := range []event.Type{event.DuelAccepted, event.DuelWithdrawn, event.DuelDeclined, event.DuelExpired} {
		bus.Subscribe(t, w.handleAnswered)
	}
}

func (w *DuelExpiryWorker) handleChallenged(ctx context.Context, e event.Event) error {
	id, issuedAt, ok := w.decode(ctx, e)
	if ok {
		w.scheduleExpiry(id, issuedAt)
	}
	return nil
}

func (w *DuelExpiryWorker) handleAnswered(ctx context.Context, e event.Event) error {
	if id, _, ok := w.decode(ctx, e); ok {
		w.stopTimer(id)
	}
	return nil
}

func (w *DuelExpiryWorker) decode(ctx context.Context, e event.Event) (uuid.UUID, time.Time, bool) {
	payload, err := event.DecodePayload[event.DuelPayloadV1](e.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidDuelPayload, "type", e.Type, "error", err)
		return uuid.Nil, time.Time{}, false
	}
	id, err := uuid.Parse(payload.DuelID)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidDuelPayload, "type", e.Type, "error", err)
		return uuid.Nil, time.Time{}, false
	}
	return id, payload.IssuedAt, true
}

func (w *DuelExpiryWorker) scheduleExpiry(id uuid.UUID, issuedAt time.Time) {
	delay := max(issuedAt.Add(w.window).Sub(w.now()), 0)
	logger.Debug(LogMsgSchedulingDuelExpiry, "duel_id", id, "delay", delay)
	w.schedule(id, delay, func() { w.expire(id, 0) })
}

// expire re-arms the timer with backoff until the store call succeeds
func (w *DuelExpiryWorker) expire(id uuid.UUID, attempt int) {
	ctx, cancel := context.WithTimeout(context.Background(), expiryRunTimeout)
	defer cancel()
	log := logger.FromContext(ctx)

	expired, err := w.duels.ExpireDuel(ctx, id)
	if err != nil {
		delay := min(w.retryBase<<attempt, w.retryMax)
		log.Error(LogMsgFailedToExpireDuel, "duel_id", id, "attempt", attempt+1, "retry_in", delay, "error", err)
		w.schedule(id, delay, func() { w.expire(id, attempt+1) })
		return
	}
	if expired {
		log.Info(LogMsgDuelExpired, "duel_id", id)
	}
}

// Shutdown cancels pending timers and waits for in-flight expiries
func (w *DuelExpiryWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, workerNameDuelExpiry)
}
