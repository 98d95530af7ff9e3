// Package reconcile awards standing points from newly observed judge
// submissions, advancing a per-participant watermark so that each
// submission counts once.
package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/judge"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/repository"
	"github.com/osse101/DuelBot_Go/internal/scoring"
)

// Config tunes a pass
type Config struct {
	StartingPoints int64
	RecentCount    int
	HistoryCount   int
	Parallelism    int
}

func (c Config) withDefaults() Config {
	if c.StartingPoints == 0 {
		c.StartingPoints = domain.DefaultStartingPoints
	}
	if c.RecentCount <= 0 {
		c.RecentCount = DefaultRecentCount
	}
	if c.HistoryCount <= 0 {
		c.HistoryCount = DefaultHistoryCount
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	return c
}

// Summary counts what a pass did
type Summary struct {
	Communities  int
	Participants int
	Skipped      int
	Awarded      int64
	Duration     time.Duration
}

// Engine runs reconciliation passes
type Engine struct {
	handles  repository.Handles
	points   repository.Points
	judge    judge.Client
	locker   concurrency.Locker
	eventBus event.Bus
	cfg      Config
}

// NewEngine creates a reconciliation engine
func NewEngine(handles repository.Handles, points repository.Points, judgeClient judge.Client, locker concurrency.Locker, eventBus event.Bus, cfg Config) *Engine {
	return &Engine{
		handles:  handles,
		points:   points,
		judge:    judgeClient,
		locker:   locker,
		eventBus: eventBus,
		cfg:      cfg.withDefaults(),
	}
}

// Process runs one pass so the engine can be scheduled as a worker job
func (e *Engine) Process(ctx context.Context) error {
	_, err := e.RunPass(ctx)
	return err
}

// RunPass reconciles every community. A failing community is logged and the
// pass moves on.
func (e *Engine) RunPass(ctx context.Context) (Summary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info(LogMsgPassStarted)

	communities, err := e.handles.ListCommunities(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", ErrContextFailedToListCommunities, err)
	}

	var total Summary
	for _, communityID := range communities {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		s, err := e.ReconcileCommunity(ctx, communityID)
		if err != nil {
			log.Error(LogMsgCommunityFailed, "community_id", communityID, "error", err)
			continue
		}
		total.Communities++
		total.Participants += s.Participants
		total.Skipped += s.Skipped
		total.Awarded += s.Awarded
	}
	total.Duration = time.Since(start)

	log.Info(LogMsgPassCompleted,
		"communities", total.Communities,
		"participants", total.Participants,
		"skipped", total.Skipped,
		"awarded", total.Awarded,
		"duration", total.Duration)
	e.publish(ctx, total)
	return total, nil
}

// ReconcileCommunity reconciles every linked participant in parallel.
// Participant failures are counted as skipped, never returned.
func (e *Engine) ReconcileCommunity(ctx context.Context, communityID string) (Summary, error) {
	handles, err := e.handles.ListHandles(ctx, communityID)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", ErrContextFailedToListHandles, err)
	}

	var (
		skipped atomic.Int64
		awarded atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallelism)
	for _, h := range handles {
		g.Go(func() error {
			delta, err := e.ReconcileParticipant(gctx, h)
			if err != nil {
				logger.FromContext(gctx).Warn(LogMsgParticipantSkipped,
					"community_id", h.CommunityID, "participant_id", h.ParticipantID, "error", err)
				skipped.Add(1)
				return nil
			}
			awarded.Add(delta)
			return nil
		})
	}
	_ = g.Wait()

	return Summary{
		Participants: len(handles),
		Skipped:      int(skipped.Load()),
		Awarded:      awarded.Load(),
	}, nil
}

// ReconcileParticipant folds the participant's new submissions into their
// balance and returns the points awarded. Runs serialized per participant.
func (e *Engine) ReconcileParticipant(ctx context.Context, h domain.Handle) (int64, error) {
	unlock, err := e.locker.Lock(ctx, lockKeyPrefix+h.CommunityID+":"+h.ParticipantID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToLock, err)
	}
	defer unlock()

	balance, err := e.points.EnsureBalance(ctx, h.CommunityID, h.ParticipantID, e.cfg.StartingPoints)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToEnsureBalance, err)
	}

	recent, err := e.judge.UserSubmissions(ctx, h.Handle, e.cfg.RecentCount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToFetchRecent, err)
	}

	fresh := scoring.NewSubmissions(recent, balance.Watermark)
	if len(fresh) == 0 {
		return 0, nil
	}

	history := fresh
	if scoring.HasAccepted(fresh) {
		history, err = e.judge.UserSubmissions(ctx, h.Handle, e.cfg.HistoryCount)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", ErrContextFailedToFetchHistory, err)
		}
	}

	acc := scoring.Accrue(fresh, history, balance.Watermark)
	if acc.NewWatermark == balance.Watermark {
		return 0, nil
	}

	ok, err := e.points.AdvanceWatermark(ctx, h.CommunityID, h.ParticipantID, balance.Watermark, acc.NewWatermark, acc.Delta)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToAdvance, err)
	}
	if !ok {
		logger.FromContext(ctx).Warn(LogMsgWatermarkRaced, "participant_id", h.ParticipantID)
		return 0, nil
	}

	if acc.Delta != 0 {
		logger.FromContext(ctx).Debug(LogMsgParticipantAwarded,
			"participant_id", h.ParticipantID, "points", acc.Delta, "accepted", acc.Accepted, "watermark", acc.NewWatermark)
	}
	return acc.Delta, nil
}

func (e *Engine) publish(ctx context.Context, s Summary) {
	if e.eventBus == nil {
		return
	}
	evt := event.NewReconcileCompletedEvent(event.ReconcileCompletedPayloadV1{
		Communities:  s.Communities,
		Participants: s.Participants,
		Skipped:      s.Skipped,
		Awarded:      s.Awarded,
		DurationMs:   s.Duration.Milliseconds(),
	})
	if err := e.eventBus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgFailedToPublishEvent, "error", err)
	}
}
