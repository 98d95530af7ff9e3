package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/judge"
)

// MockEventBus mocks event.Bus
type MockEventBus struct {
	mock.Mock
}

// NewMockEventBus creates a mock that asserts its expectations on cleanup
func NewMockEventBus(t *testing.T) *MockEventBus {
	m := &MockEventBus{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEventBus) Publish(ctx context.Context, evt event.Event) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockEventBus) Subscribe(eventType event.Type, handler event.Handler) {
	m.Called(eventType, handler)
}

// MockJudgeClient mocks judge.Client
type MockJudgeClient struct {
	mock.Mock
}

// NewMockJudgeClient creates a mock that asserts its expectations on cleanup
func NewMockJudgeClient(t *testing.T) *MockJudgeClient {
	m := &MockJudgeClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockJudgeClient) UserSubmissions(ctx context.Context, handle string, count int) ([]domain.Submission, error) {
	args := m.Called(ctx, handle, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockJudgeClient) UserRating(ctx context.Context, handle string) (int, error) {
	args := m.Called(ctx, handle)
	return args.Int(0), args.Error(1)
}

func (m *MockJudgeClient) Problems(ctx context.Context) ([]domain.Problem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Problem), args.Error(1)
}

var (
	_ event.Bus    = (*MockEventBus)(nil)
	_ judge.Client = (*MockJudgeClient)(nil)
)
