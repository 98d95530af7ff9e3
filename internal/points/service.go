// Package points serves balances, leaderboards and the community settings
// that route points notifications.
package points

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/judge"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

// BalanceView is a balance labelled with its duel rank
type BalanceView struct {
	domain.Balance
	Rank domain.DuelRank `json:"rank"`
}

// Service defines the points and membership operations
type Service interface {
	Balance(ctx context.Context, communityID, participantID string) (*BalanceView, error)
	Standings(ctx context.Context, communityID string, limit int) ([]domain.Standing, error)
	LinkHandle(ctx context.Context, communityID, participantID, handle string) (*domain.Handle, error)
	SetMasterChannel(ctx context.Context, communityID, channelID string) error
	PublishWeeklyStandings(ctx context.Context) (int, error)
}

type service struct {
	points        repository.Points
	handles       repository.Handles
	judge         judge.Client
	eventBus      event.Bus
	startingValue int64
}

// NewService creates a points service
func NewService(points repository.Points, handles repository.Handles, judgeClient judge.Client, eventBus event.Bus, startingValue int64) Service {
	if startingValue == 0 {
		startingValue = domain.DefaultStartingPoints
	}
	return &service{
		points:        points,
		handles:       handles,
		judge:         judgeClient,
		eventBus:      eventBus,
		startingValue: startingValue,
	}
}

// Balance returns the stored balance, or the starting value for a
// participant not yet observed. Nothing is created.
func (s *service) Balance(ctx context.Context, communityID, participantID string) (*BalanceView, error) {
	b, err := s.points.GetBalance(ctx, communityID, participantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}
	if b == nil {
		b = &domain.Balance{CommunityID: communityID, ParticipantID: participantID, Total: s.startingValue}
	}
	return &BalanceView{Balance: *b, Rank: domain.RankFor(b.Total)}, nil
}

func (s *service) Standings(ctx context.Context, communityID string, limit int) ([]domain.Standing, error) {
	if limit <= 0 {
		limit = DefaultStandingsLimit
	}
	limit = min(limit, MaxStandingsLimit)

	balances, err := s.points.ListStandings(ctx, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListStandings, err)
	}
	return domain.BuildStandings(balances), nil
}

// LinkHandle checks the handle exists on the judge before storing it
func (s *service) LinkHandle(ctx context.Context, communityID, participantID, handle string) (*domain.Handle, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, fmt.Errorf("%w: empty handle", domain.ErrInvalidInput)
	}

	if _, err := s.judge.UserRating(ctx, handle); err != nil {
		if errors.Is(err, judge.ErrRejected) {
			return nil, fmt.Errorf("%w: unknown handle %q", domain.ErrInvalidInput, handle)
		}
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToVerifyHandle, err)
	}

	h := domain.Handle{CommunityID: communityID, ParticipantID: participantID, Handle: handle}
	if err := s.handles.LinkHandle(ctx, h); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToLinkHandle, err)
	}
	logger.FromContext(ctx).Info(LogMsgHandleLinked,
		"community_id", communityID, "participant_id", participantID, "handle", handle)
	return &h, nil
}

func (s *service) SetMasterChannel(ctx context.Context, communityID, channelID string) error {
	if err := s.handles.SetMasterChannel(ctx, communityID, channelID); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSetChannel, err)
	}
	logger.FromContext(ctx).Info(LogMsgMasterChannelSet, "community_id", communityID, "channel_id", channelID)
	return nil
}

// PublishWeeklyStandings publishes the top of the leaderboard for every
// community with a master channel. Returns how many were published.
func (s *service) PublishWeeklyStandings(ctx context.Context) (int, error) {
	settings, err := s.handles.ListSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToListSettings, err)
	}

	published := 0
	var errs []error
	for _, cs := range settings {
		if cs.MasterChannelID == "" {
			continue
		}
		standings, err := s.Standings(ctx, cs.CommunityID, WeeklyStandingsLimit)
		if err == nil && len(standings) == 0 {
			continue
		}
		if err == nil {
			err = s.eventBus.Publish(ctx, event.NewWeeklyStandingsEvent(cs.CommunityID, standings))
		}
		if err != nil {
			logger.FromContext(ctx).Warn(LogMsgWeeklyStandingsFailed, "community_id", cs.CommunityID, "error", err)
			errs = append(errs, err)
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}
