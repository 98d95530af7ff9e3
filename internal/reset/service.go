// Package reset runs the monthly standings reset
package reset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/DuelBot_Go/internal/archive"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

// Service resets community balances once per calendar month
type Service interface {
	// ResetCommunity resets one community for the period containing now.
	// Returns domain.ErrAlreadyReset if the period was already claimed.
	ResetCommunity(ctx context.Context, communityID string, now time.Time) (*domain.ResetResult, error)

	// ResetAll resets every tracked community. Already-reset communities
	// come back with Skipped set.
	ResetAll(ctx context.Context, now time.Time) ([]domain.ResetResult, error)
}

type service struct {
	points        repository.Points
	handles       repository.Handles
	archiver      archive.Archiver
	eventBus      event.Bus
	startingValue int64
}

// NewService creates a reset service. archiver and eventBus may be nil.
func NewService(points repository.Points, handles repository.Handles, archiver archive.Archiver, eventBus event.Bus, startingValue int64) Service {
	if archiver == nil {
		archiver = archive.Nop{}
	}
	if startingValue == 0 {
		startingValue = domain.DefaultStartingPoints
	}
	return &service{
		points:        points,
		handles:       handles,
		archiver:      archiver,
		eventBus:      eventBus,
		startingValue: startingValue,
	}
}

func (s *service) ResetCommunity(ctx context.Context, communityID string, now time.Time) (*domain.ResetResult, error) {
	log := logger.FromContext(ctx)
	period := domain.ResetPeriod(now)

	tx, err := s.points.BeginResetTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	claimed, err := tx.ClaimResetPeriod(ctx, communityID, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToClaimPeriod, err)
	}
	if !claimed {
		log.Info(LogMsgResetSkipped, "community_id", communityID, "period", period)
		return nil, fmt.Errorf("%s %s: %w", communityID, period, domain.ErrAlreadyReset)
	}

	balances, err := tx.ListStandings(ctx, communityID, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSnapshot, err)
	}

	affected, err := tx.ResetBalances(ctx, communityID, s.startingValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToResetBalances, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommit, err)
	}

	result := &domain.ResetResult{
		CommunityID:     communityID,
		Period:          period,
		RecordsAffected: affected,
		StartingValue:   s.startingValue,
		Standings:       domain.BuildStandings(balances),
		ResetAt:         now.UTC(),
	}
	log.Info(LogMsgResetCompleted, "community_id", communityID, "period", period, "records_affected", affected)

	if err := s.archiver.Archive(ctx, result); err != nil {
		log.Warn(LogMsgArchiveFailed, "community_id", communityID, "period", period, "error", err)
	}
	s.publish(ctx, result)
	return result, nil
}

func (s *service) ResetAll(ctx context.Context, now time.Time) ([]domain.ResetResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgResetStarting, "period", domain.ResetPeriod(now))

	communities, err := s.handles.ListCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListCommunities, err)
	}

	results := make([]domain.ResetResult, 0, len(communities))
	var errs []error
	for _, communityID := range communities {
		result, err := s.ResetCommunity(ctx, communityID, now)
		switch {
		case errors.Is(err, domain.ErrAlreadyReset):
			results = append(results, domain.ResetResult{
				CommunityID: communityID,
				Period:      domain.ResetPeriod(now),
				Skipped:     true,
			})
		case err != nil:
			log.Error(LogMsgResetFailed, "community_id", communityID, "error", err)
			errs = append(errs, err)
		default:
			results = append(results, *result)
		}
	}
	return results, errors.Join(errs...)
}

func (s *service) publish(ctx context.Context, result *domain.ResetResult) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event.NewPointsResetEvent(result)); err != nil {
		logger.FromContext(ctx).Warn(LogMsgFailedToPublishEvent, "error", err)
	}
}
