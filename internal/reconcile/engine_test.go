package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/repository"
	"github.com/osse101/DuelBot_Go/mocks"
)

var t0 = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func sub(id int64, index string, v domain.Verdict, rating int) domain.Submission {
	return domain.Submission{
		ID:            id,
		ContestID:     1742,
		ProblemIndex:  index,
		ProblemName:   "Problem " + index,
		ProblemRating: rating,
		Verdict:       v,
		CreatedAt:     t0.Add(time.Duration(id) * time.Minute),
	}
}

// newest first, as the judge returns them
var submissions = []domain.Submission{
	sub(3, "B", domain.VerdictOK, 700),
	sub(2, "A", domain.VerdictOK, 1200),
	sub(1, "A", domain.VerdictWrongAnswer, 1200),
}

// memoryPoints is a Points store with real compare-and-advance semantics
type memoryPoints struct {
	repository.Points
	mu       sync.Mutex
	balances map[string]*domain.Balance
}

func newMemoryPoints() *memoryPoints {
	return &memoryPoints{balances: make(map[string]*domain.Balance)}
}

func (m *memoryPoints) EnsureBalance(_ context.Context, communityID, participantID string, startingValue int64) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := communityID + "/" + participantID
	b, ok := m.balances[key]
	if !ok {
		b = &domain.Balance{CommunityID: communityID, ParticipantID: participantID, Total: startingValue}
		m.balances[key] = b
	}
	cp := *b
	return &cp, nil
}

func (m *memoryPoints) AdvanceWatermark(_ context.Context, communityID, participantID string, oldWatermark, newWatermark, delta int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balances[communityID+"/"+participantID]
	if b == nil || b.Watermark != oldWatermark {
		return false, nil
	}
	b.Watermark = newWatermark
	b.Total += delta
	return true, nil
}

func (m *memoryPoints) get(communityID, participantID string) domain.Balance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.balances[communityID+"/"+participantID]
}

func TestReconcileParticipant(t *testing.T) {
	ctx := context.Background()
	h := domain.Handle{CommunityID: "guild", ParticipantID: "alice", Handle: "tourist"}

	t.Run("awards new accepted submissions and is idempotent", func(t *testing.T) {
		judge := mocks.NewMockJudgeClient(t)
		judge.On("UserSubmissions", ctx, "tourist", DefaultRecentCount).Return(submissions, nil)
		judge.On("UserSubmissions", ctx, "tourist", DefaultHistoryCount).Return(submissions, nil).Once()
		points := newMemoryPoints()
		e := NewEngine(nil, points, judge, concurrency.NewLockManager(), nil, Config{})

		// A: 30 base, not first attempt. B: 5 base + 5 bonus.
		delta, err := e.ReconcileParticipant(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, int64(40), delta)

		b := points.get("guild", "alice")
		assert.Equal(t, int64(1540), b.Total)
		assert.Equal(t, int64(3), b.Watermark)

		delta, err = e.ReconcileParticipant(ctx, h)
		require.NoError(t, err)
		assert.Zero(t, delta)
		assert.Equal(t, b, points.get("guild", "alice"), "second pass changes nothing")
	})

	t.Run("only rejections skip the history fetch", func(t *testing.T) {
		judge := mocks.NewMockJudgeClient(t)
		judge.On("UserSubmissions", ctx, "tourist", DefaultRecentCount).
			Return([]domain.Submission{sub(5, "C", domain.VerdictWrongAnswer, 900)}, nil)
		points := newMemoryPoints()
		e := NewEngine(nil, points, judge, concurrency.NewLockManager(), nil, Config{})

		delta, err := e.ReconcileParticipant(ctx, h)
		require.NoError(t, err)
		assert.Zero(t, delta)
		assert.Equal(t, int64(5), points.get("guild", "alice").Watermark)
	})

	t.Run("fetch failure leaves the watermark alone", func(t *testing.T) {
		judge := mocks.NewMockJudgeClient(t)
		judge.On("UserSubmissions", ctx, "tourist", DefaultRecentCount).Return(nil, domain.ErrJudgeUnavailable)
		points := newMemoryPoints()
		e := NewEngine(nil, points, judge, concurrency.NewLockManager(), nil, Config{})

		_, err := e.ReconcileParticipant(ctx, h)
		assert.ErrorIs(t, err, domain.ErrJudgeUnavailable)
		assert.Zero(t, points.get("guild", "alice").Watermark)
	})

	t.Run("lost watermark race awards nothing", func(t *testing.T) {
		judge := mocks.NewMockJudgeClient(t)
		judge.On("UserSubmissions", ctx, "tourist", mock.Anything).Return(submissions, nil)
		points := mocks.NewMockRepositoryPoints(t)
		points.On("EnsureBalance", ctx, "guild", "alice", domain.DefaultStartingPoints).
			Return(&domain.Balance{Total: 1500}, nil)
		points.On("AdvanceWatermark", ctx, "guild", "alice", int64(0), int64(3), int64(40)).Return(false, nil)
		e := NewEngine(nil, points, judge, concurrency.NewLockManager(), nil, Config{})

		delta, err := e.ReconcileParticipant(ctx, h)
		require.NoError(t, err)
		assert.Zero(t, delta)
	})
}

func TestReconcileParticipant_OverlappingPassesCountOnce(t *testing.T) {
	ctx := context.Background()
	h := domain.Handle{CommunityID: "guild", ParticipantID: "alice", Handle: "tourist"}

	judge := mocks.NewMockJudgeClient(t)
	judge.On("UserSubmissions", mock.Anything, "tourist", mock.Anything).Return(submissions, nil)
	points := newMemoryPoints()
	e := NewEngine(nil, points, judge, concurrency.NewLockManager(), nil, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ReconcileParticipant(ctx, h)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1540), points.get("guild", "alice").Total)
}

func TestRunPass(t *testing.T) {
	ctx := context.Background()

	handles := mocks.NewMockRepositoryHandles(t)
	handles.On("ListCommunities", ctx).Return([]string{"broken", "guild"}, nil)
	handles.On("ListHandles", ctx, "broken").Return(nil, errors.New("db timeout"))
	handles.On("ListHandles", ctx, "guild").Return([]domain.Handle{
		{CommunityID: "guild", ParticipantID: "alice", Handle: "tourist"},
		{CommunityID: "guild", ParticipantID: "bob", Handle: "offline"},
	}, nil)

	judge := mocks.NewMockJudgeClient(t)
	judge.On("UserSubmissions", mock.Anything, "tourist", mock.Anything).Return(submissions, nil)
	judge.On("UserSubmissions", mock.Anything, "offline", mock.Anything).
		Return(nil, fmt.Errorf("%w: 503", domain.ErrJudgeUnavailable))

	bus := mocks.NewMockEventBus(t)
	bus.On("Publish", ctx, mock.Anything).Return(nil).Once()

	points := newMemoryPoints()
	e := NewEngine(handles, points, judge, concurrency.NewLockManager(), bus, Config{Parallelism: 2})

	summary, err := e.RunPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Communities, "broken community is skipped, not fatal")
	assert.Equal(t, 2, summary.Participants)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, int64(40), summary.Awarded)
	assert.Equal(t, int64(1500), points.get("guild", "bob").Total)
}

func TestRunPass_ListCommunitiesFails(t *testing.T) {
	handles := mocks.NewMockRepositoryHandles(t)
	handles.On("ListCommunities", mock.Anything).Return(nil, errors.New("down"))

	e := NewEngine(handles, newMemoryPoints(), nil, concurrency.NewLockManager(), nil, Config{})
	err := e.Process(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrContextFailedToListCommunities)
}
