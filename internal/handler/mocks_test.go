package handler

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/points"
)

// ============================================================================
// MOCKS
// ============================================================================

type MockDuelService struct {
	mock.Mock
}

func (m *MockDuelService) Challenge(ctx context.Context, communityID, challengerID, challengeeID string, rating *int) (*domain.Duel, error) {
	args := m.Called(ctx, communityID, challengerID, challengeeID, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duel), args.Error(1)
}

func (m *MockDuelService) Accept(ctx context.Context, actorID string) (*domain.Duel, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duel), args.Error(1)
}

func (m *MockDuelService) Complete(ctx context.Context, actorID string) (*domain.CompletionResult, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletionResult), args.Error(1)
}

func (m *MockDuelService) Cancel(ctx context.Context, actorID string) (domain.CancelResult, *domain.Duel, error) {
	args := m.Called(ctx, actorID)
	d, _ := args.Get(1).(*domain.Duel)
	return args.Get(0).(domain.CancelResult), d, args.Error(2)
}

func (m *MockDuelService) ExpireDuel(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDuelService) JudgeAwaiting(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDuelService) GetOpenDuel(ctx context.Context, participantID string) (*domain.Duel, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duel), args.Error(1)
}

func (m *MockDuelService) ListPendingDuels(ctx context.Context) ([]domain.Duel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Duel), args.Error(1)
}

// History yields the configured duels, then the configured error if any
func (m *MockDuelService) History(ctx context.Context, participantID string) iter.Seq2[domain.Duel, error] {
	args := m.Called(ctx, participantID)
	duels, _ := args.Get(0).([]domain.Duel)
	failure := args.Error(1)
	return func(yield func(domain.Duel, error) bool) {
		for _, d := range duels {
			if !yield(d, nil) {
				return
			}
		}
		if failure != nil {
			yield(domain.Duel{}, failure)
		}
	}
}

type MockPointsService struct {
	mock.Mock
}

func (m *MockPointsService) Balance(ctx context.Context, communityID, participantID string) (*points.BalanceView, error) {
	args := m.Called(ctx, communityID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*points.BalanceView), args.Error(1)
}

func (m *MockPointsService) Standings(ctx context.Context, communityID string, limit int) ([]domain.Standing, error) {
	args := m.Called(ctx, communityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Standing), args.Error(1)
}

func (m *MockPointsService) LinkHandle(ctx context.Context, communityID, participantID, handle string) (*domain.Handle, error) {
	args := m.Called(ctx, communityID, participantID, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Handle), args.Error(1)
}

func (m *MockPointsService) SetMasterChannel(ctx context.Context, communityID, channelID string) error {
	return m.Called(ctx, communityID, channelID).Error(0)
}

func (m *MockPointsService) PublishWeeklyStandings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockResetService struct {
	mock.Mock
}

func (m *MockResetService) ResetCommunity(ctx context.Context, communityID string, now time.Time) (*domain.ResetResult, error) {
	args := m.Called(ctx, communityID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResetResult), args.Error(1)
}

func (m *MockResetService) ResetAll(ctx context.Context, now time.Time) ([]domain.ResetResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResetResult), args.Error(1)
}
