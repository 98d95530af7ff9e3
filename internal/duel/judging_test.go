package duel

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/selector"
)

// recentJudge serves each handle's submissions newest first and honours count
// the way the live API does
type recentJudge struct {
	quietJudge
	mu   sync.Mutex
	subs map[string][]domain.Submission
	down bool
}

func (j *recentJudge) UserSubmissions(_ context.Context, handle string, count int) ([]domain.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.down {
		return nil, domain.ErrJudgeUnavailable
	}
	subs := j.subs[handle]
	if count > 0 && len(subs) > count {
		subs = subs[:count]
	}
	return subs, nil
}

func (j *recentJudge) setDown(down bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.down = down
}

// newestFirst reverses subs built in chronological order
func newestFirst(subs []domain.Submission) []domain.Submission {
	out := make([]domain.Submission, len(subs))
	for i, s := range subs {
		out[len(subs)-1-i] = s
	}
	return out
}

func busyAfterEarlySolve(start time.Time) []domain.Submission {
	subs := []domain.Submission{{ID: 1, ProblemName: "A", Verdict: domain.VerdictOK, CreatedAt: start.Add(time.Minute)}}
	for i := 0; i < 150; i++ {
		subs = append(subs, domain.Submission{
			ID:          int64(i + 2),
			ProblemName: "Z",
			Verdict:     domain.VerdictWrongAnswer,
			CreatedAt:   start.Add(2*time.Minute + time.Duration(i)*time.Second),
		})
	}
	return newestFirst(subs)
}

func bothCompletedDuel(start time.Time) *domain.Duel {
	d := pendingDuel()
	d.Status = domain.DuelStatusActive
	d.StartedAt = &start
	d.ChallengerCompleted = true
	return d
}

func TestComplete_EarlySolveBehindManyLaterSubmissions(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(-time.Hour).UTC()
	duel := bothCompletedDuel(start)

	repo := newMemoryDuelRepo(duel)
	judge := &recentJudge{subs: map[string][]domain.Submission{
		"alice": busyAfterEarlySolve(start),
		"bob":   newestFirst(solvedAt("A", start.Add(10*time.Minute), 2)),
	}}
	svc := NewService(repo, handleIsID{}, judge, selector.New(rand.NewPCG(1, 1)),
		concurrency.NewLockManager(), nil, Config{})

	res, err := svc.Complete(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, domain.CompletionFinished, res.Status)

	assert.Equal(t, 30, res.Outcome.ChallengerScore)
	assert.Equal(t, 20, res.Outcome.ChallengeeScore)
	assert.Equal(t, domain.WinnerChallenger, res.Outcome.Winner)
	assert.Equal(t, int64(30), repo.points["alice"])
	assert.Equal(t, int64(-10), repo.points["bob"])
}

func TestJudgeAwaiting_SettlesAfterOutage(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(-time.Hour).UTC()
	duel := bothCompletedDuel(start)

	repo := newMemoryDuelRepo(duel)
	judge := &recentJudge{subs: map[string][]domain.Submission{
		"alice": newestFirst(solvedAt("A", start.Add(5*time.Minute), 0)),
	}}
	judge.setDown(true)
	svc := NewService(repo, handleIsID{}, judge, selector.New(rand.NewPCG(1, 1)),
		concurrency.NewLockManager(), nil, Config{})
	job := NewJudgeRetryJob(svc)

	_, err := svc.Complete(ctx, "bob")
	require.ErrorIs(t, err, domain.ErrJudgeUnavailable)

	err = job.Process(ctx)
	require.ErrorIs(t, err, domain.ErrJudgeUnavailable)
	stuck, err := repo.GetDuel(ctx, duel.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DuelStatusActive, stuck.Status)

	judge.setDown(false)
	require.NoError(t, job.Process(ctx))

	final, err := repo.GetDuel(ctx, duel.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DuelStatusComplete, final.Status)
	assert.Equal(t, int64(30), repo.points["alice"])

	settled, err := svc.JudgeAwaiting(ctx)
	require.NoError(t, err)
	assert.Zero(t, settled, "nothing left to settle")
}

func TestJudgeAwaiting_SkipsDuelSettledMeanwhile(t *testing.T) {
	ctx := context.Background()
	d := setup(t)
	duel := activeDuel()
	duel.ChallengerCompleted, duel.ChallengeeCompleted = true, true
	done := *duel
	done.Status = domain.DuelStatusComplete

	d.repo.On("ListAwaitingJudgement", ctx).Return([]domain.Duel{*duel}, nil)
	d.repo.On("GetDuel", ctx, duel.ID).Return(&done, nil)

	settled, err := d.svc.JudgeAwaiting(ctx)
	require.NoError(t, err)
	assert.Zero(t, settled)
	d.judge.AssertNotCalled(t, "UserSubmissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestJudgeAwaiting_ListFailure(t *testing.T) {
	ctx := context.Background()
	d := setup(t)
	d.repo.On("ListAwaitingJudgement", ctx).Return(nil, errors.New("db down"))

	_, err := d.svc.JudgeAwaiting(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrContextFailedToListAwaiting)
}
