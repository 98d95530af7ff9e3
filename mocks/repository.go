// Package mocks provides testify mocks for the service and repository interfaces.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

// MockRepositoryDuel mocks repository.Duel
type MockRepositoryDuel struct {
	mock.Mock
}

// NewMockRepositoryDuel creates a mock that asserts its expectations on cleanup
func NewMockRepositoryDuel(t *testing.T) *MockRepositoryDuel {
	m := &MockRepositoryDuel{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepositoryDuel) CreateDuel(ctx context.Context, duel *domain.Duel) error {
	return m.Called(ctx, duel).Error(0)
}

func (m *MockRepositoryDuel) GetDuel(ctx context.Context, id uuid.UUID) (*domain.Duel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duel), args.Error(1)
}

func (m *MockRepositoryDuel) GetOpenDuel(ctx context.Context, participantID string) (*domain.Duel, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duel), args.Error(1)
}

func (m *MockRepositoryDuel) ListPendingDuels(ctx context.Context) ([]domain.Duel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Duel), args.Error(1)
}

func (m *MockRepositoryDuel) TransitionDuel(ctx context.Context, id uuid.UUID, from, to domain.DuelStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositoryDuel) MarkSideComplete(ctx context.Context, id uuid.UUID, side domain.Side) (*domain.Duel, error) {
	args := m.Called(ctx, id, side)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duel), args.Error(1)
}

func (m *MockRepositoryDuel) ListAwaitingJudgement(ctx context.Context) ([]domain.Duel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Duel), args.Error(1)
}

func (m *MockRepositoryDuel) ListFinishedDuels(ctx context.Context, participantID string, cursor repository.HistoryCursor, limit int) ([]domain.Duel, error) {
	args := m.Called(ctx, participantID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Duel), args.Error(1)
}

func (m *MockRepositoryDuel) BeginDuelTx(ctx context.Context) (repository.DuelTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.DuelTx), args.Error(1)
}

// MockRepositoryDuelTx mocks repository.DuelTx
type MockRepositoryDuelTx struct {
	mock.Mock
}

// NewMockRepositoryDuelTx creates a mock that asserts its expectations on cleanup
func NewMockRepositoryDuelTx(t *testing.T) *MockRepositoryDuelTx {
	m := &MockRepositoryDuelTx{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepositoryDuelTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepositoryDuelTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepositoryDuelTx) CompleteDuel(ctx context.Context, id uuid.UUID, outcome domain.Outcome, finishedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, outcome, finishedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositoryDuelTx) AddPoints(ctx context.Context, communityID, participantID string, delta, startingValue int64) error {
	return m.Called(ctx, communityID, participantID, delta, startingValue).Error(0)
}

// MockRepositoryPoints mocks repository.Points
type MockRepositoryPoints struct {
	mock.Mock
}

// NewMockRepositoryPoints creates a mock that asserts its expectations on cleanup
func NewMockRepositoryPoints(t *testing.T) *MockRepositoryPoints {
	m := &MockRepositoryPoints{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepositoryPoints) GetBalance(ctx context.Context, communityID, participantID string) (*domain.Balance, error) {
	args := m.Called(ctx, communityID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockRepositoryPoints) EnsureBalance(ctx context.Context, communityID, participantID string, startingValue int64) (*domain.Balance, error) {
	args := m.Called(ctx, communityID, participantID, startingValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockRepositoryPoints) AdvanceWatermark(ctx context.Context, communityID, participantID string, oldWatermark, newWatermark, delta int64) (bool, error) {
	args := m.Called(ctx, communityID, participantID, oldWatermark, newWatermark, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositoryPoints) ListStandings(ctx context.Context, communityID string, limit int) ([]domain.Balance, error) {
	args := m.Called(ctx, communityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}

func (m *MockRepositoryPoints) BeginResetTx(ctx context.Context) (repository.ResetTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.ResetTx), args.Error(1)
}

// MockRepositoryResetTx mocks repository.ResetTx
type MockRepositoryResetTx struct {
	mock.Mock
}

// NewMockRepositoryResetTx creates a mock that asserts its expectations on cleanup
func NewMockRepositoryResetTx(t *testing.T) *MockRepositoryResetTx {
	m := &MockRepositoryResetTx{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepositoryResetTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepositoryResetTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepositoryResetTx) ClaimResetPeriod(ctx context.Context, communityID, period string) (bool, error) {
	args := m.Called(ctx, communityID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositoryResetTx) ListStandings(ctx context.Context, communityID string, limit int) ([]domain.Balance, error) {
	args := m.Called(ctx, communityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}

func (m *MockRepositoryResetTx) ResetBalances(ctx context.Context, communityID string, value int64) (int64, error) {
	args := m.Called(ctx, communityID, value)
	return args.Get(0).(int64), args.Error(1)
}

// MockRepositoryHandles mocks repository.Handles
type MockRepositoryHandles struct {
	mock.Mock
}

// NewMockRepositoryHandles creates a mock that asserts its expectations on cleanup
func NewMockRepositoryHandles(t *testing.T) *MockRepositoryHandles {
	m := &MockRepositoryHandles{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepositoryHandles) LinkHandle(ctx context.Context, handle domain.Handle) error {
	return m.Called(ctx, handle).Error(0)
}

func (m *MockRepositoryHandles) GetHandle(ctx context.Context, communityID, participantID string) (string, error) {
	args := m.Called(ctx, communityID, participantID)
	return args.String(0), args.Error(1)
}

func (m *MockRepositoryHandles) ListHandles(ctx context.Context, communityID string) ([]domain.Handle, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Handle), args.Error(1)
}

func (m *MockRepositoryHandles) ListCommunities(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepositoryHandles) SetMasterChannel(ctx context.Context, communityID, channelID string) error {
	return m.Called(ctx, communityID, channelID).Error(0)
}

func (m *MockRepositoryHandles) GetSettings(ctx context.Context, communityID string) (*domain.CommunitySettings, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommunitySettings), args.Error(1)
}

func (m *MockRepositoryHandles) ListSettings(ctx context.Context) ([]domain.CommunitySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommunitySettings), args.Error(1)
}

var (
	_ repository.Duel    = (*MockRepositoryDuel)(nil)
	_ repository.DuelTx  = (*MockRepositoryDuelTx)(nil)
	_ repository.Points  = (*MockRepositoryPoints)(nil)
	_ repository.ResetTx = (*MockRepositoryResetTx)(nil)
	_ repository.Handles = (*MockRepositoryHandles)(nil)
)
