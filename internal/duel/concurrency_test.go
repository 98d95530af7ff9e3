package duel

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/repository"
	"github.com/osse101/DuelBot_Go/internal/selector"
)

// memoryDuelRepo is a compare-and-transition store for exercising races
type memoryDuelRepo struct {
	repository.Duel
	mu     sync.Mutex
	duels  map[uuid.UUID]*domain.Duel
	points map[string]int64
}

func newMemoryDuelRepo(duels ...*domain.Duel) *memoryDuelRepo {
	r := &memoryDuelRepo{duels: make(map[uuid.UUID]*domain.Duel), points: make(map[string]int64)}
	for _, d := range duels {
		r.duels[d.ID] = d
	}
	return r
}

func (r *memoryDuelRepo) GetDuel(_ context.Context, id uuid.UUID) (*domain.Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.duels[id]
	if !ok {
		return nil, domain.ErrDuelNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memoryDuelRepo) GetOpenDuel(_ context.Context, participantID string) (*domain.Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.duels {
		if d.Status.IsTerminal() {
			continue
		}
		if _, ok := d.SideOf(participantID); ok {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDuelNotFound
}

func (r *memoryDuelRepo) TransitionDuel(_ context.Context, id uuid.UUID, from, to domain.DuelStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.duels[id]
	if d == nil || d.Status != from {
		return false, nil
	}
	d.Status = to
	if to == domain.DuelStatusActive {
		d.StartedAt = &at
	}
	if to.IsTerminal() {
		d.FinishedAt = &at
	}
	return true, nil
}

// CreateDuel rejects a duel for anyone already in an open one, checked under
// the same lock as the insert.
func (r *memoryDuelRepo) CreateDuel(_ context.Context, duel *domain.Duel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.duels {
		if d.Status.IsTerminal() {
			continue
		}
		for _, id := range []string{duel.ChallengerID, duel.ChallengeeID} {
			if _, ok := d.SideOf(id); ok {
				return domain.ErrAlreadyInDuel
			}
		}
	}
	cp := *duel
	r.duels[duel.ID] = &cp
	return nil
}

func (r *memoryDuelRepo) ListPendingDuels(context.Context) ([]domain.Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Duel
	for _, d := range r.duels {
		if d.Status == domain.DuelStatusPending {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memoryDuelRepo) MarkSideComplete(_ context.Context, id uuid.UUID, side domain.Side) (*domain.Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.duels[id]
	if d == nil || d.Status != domain.DuelStatusActive {
		return nil, domain.ErrNoActiveDuel
	}
	if side == domain.SideChallenger {
		d.ChallengerCompleted = true
	} else {
		d.ChallengeeCompleted = true
	}
	cp := *d
	return &cp, nil
}

func (r *memoryDuelRepo) ListAwaitingJudgement(context.Context) ([]domain.Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Duel
	for _, d := range r.duels {
		if d.Status == domain.DuelStatusActive && d.BothCompleted() {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memoryDuelRepo) BeginDuelTx(context.Context) (repository.DuelTx, error) {
	return &memoryDuelTx{repo: r}, nil
}

// openDuels counts each participant's non-terminal duels in one snapshot
func (r *memoryDuelRepo) openDuels() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, d := range r.duels {
		if d.Status.IsTerminal() {
			continue
		}
		counts[d.ChallengerID]++
		counts[d.ChallengeeID]++
	}
	return counts
}

type memoryDuelTx struct {
	repo *memoryDuelRepo
}

func (tx *memoryDuelTx) CompleteDuel(_ context.Context, id uuid.UUID, outcome domain.Outcome, finishedAt time.Time) (bool, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	d := tx.repo.duels[id]
	if d == nil || d.Status != domain.DuelStatusActive {
		return false, nil
	}
	d.Status = domain.DuelStatusComplete
	d.FinishedAt = &finishedAt
	return true, nil
}

func (tx *memoryDuelTx) AddPoints(_ context.Context, _, participantID string, delta, _ int64) error {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	tx.repo.points[participantID] += delta
	return nil
}

func (tx *memoryDuelTx) Commit(context.Context) error   { return nil }
func (tx *memoryDuelTx) Rollback(context.Context) error { return nil }

// handleIsID links every participant to a handle equal to their id
type handleIsID struct {
	repository.Handles
}

func (handleIsID) GetHandle(_ context.Context, _, participantID string) (string, error) {
	return participantID, nil
}

// quietJudge has no submissions for anyone and a fixed catalog
type quietJudge struct{}

func (quietJudge) UserSubmissions(context.Context, string, int) ([]domain.Submission, error) {
	return nil, nil
}
func (quietJudge) UserRating(context.Context, string) (int, error) { return 1500, nil }
func (quietJudge) Problems(context.Context) ([]domain.Problem, error) {
	return catalogAround(1200), nil
}

func TestAcceptVersusExpiry_ExactlyOneWins(t *testing.T) {
	for i := 0; i < 50; i++ {
		duel := pendingDuel()
		repo := newMemoryDuelRepo(duel)
		bus := event.NewMemoryBus()

		var accepted, expired atomic.Int32
		bus.Subscribe(event.DuelAccepted, func(context.Context, event.Event) error { accepted.Add(1); return nil })
		bus.Subscribe(event.DuelExpired, func(context.Context, event.Event) error { expired.Add(1); return nil })

		svc := NewService(repo, nil, nil, selector.New(rand.NewPCG(1, 1)), concurrency.NewLockManager(), bus, Config{})

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = svc.Accept(context.Background(), "bob")
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.ExpireDuel(context.Background(), duel.ID)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.ExpireDuel(context.Background(), duel.ID)
		}()
		wg.Wait()

		final, err := repo.GetDuel(context.Background(), duel.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), accepted.Load()+expired.Load(), "exactly one transition out of PENDING")
		if accepted.Load() == 1 {
			assert.Equal(t, domain.DuelStatusActive, final.Status)
		} else {
			assert.Equal(t, domain.DuelStatusExpired, final.Status)
		}
	}
}

func TestAcceptBeforeExpiry_PreventsExpiry(t *testing.T) {
	duel := pendingDuel()
	repo := newMemoryDuelRepo(duel)
	svc := NewService(repo, nil, nil, selector.New(nil), concurrency.NewLockManager(), event.NewMemoryBus(), Config{})

	_, err := svc.Accept(context.Background(), "bob")
	require.NoError(t, err)

	ok, err := svc.ExpireDuel(context.Background(), duel.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

// randomStep applies one randomly chosen operation for a randomly chosen participant
func randomStep(ctx context.Context, svc Service, rng *rand.Rand, participants []string) {
	rating := 1200
	actor := participants[rng.IntN(len(participants))]
	switch rng.IntN(5) {
	case 0:
		other := participants[rng.IntN(len(participants))]
		_, _ = svc.Challenge(ctx, community, actor, other, &rating)
	case 1:
		_, _ = svc.Accept(ctx, actor)
	case 2:
		_, _ = svc.Complete(ctx, actor)
	case 3:
		_, _, _ = svc.Cancel(ctx, actor)
	case 4:
		pending, _ := svc.ListPendingDuels(ctx)
		if len(pending) > 0 {
			_, _ = svc.ExpireDuel(ctx, pending[rng.IntN(len(pending))].ID)
		}
	}
}

func TestRandomOperations_NeverTwoOpenDuels(t *testing.T) {
	ctx := context.Background()
	participants := []string{"p1", "p2", "p3", "p4"}

	for seed := uint64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		repo := newMemoryDuelRepo()
		svc := NewService(repo, handleIsID{}, quietJudge{}, selector.New(rand.NewPCG(seed, 7)),
			concurrency.NewLockManager(), nil, Config{})

		for step := 0; step < 200; step++ {
			randomStep(ctx, svc, rng, participants)
			for p, n := range repo.openDuels() {
				require.LessOrEqualf(t, n, 1, "seed %d step %d: %s has %d open duels", seed, step, p, n)
			}
		}
	}
}

func TestConcurrentOperations_NeverTwoOpenDuels(t *testing.T) {
	ctx := context.Background()
	participants := []string{"p1", "p2", "p3", "p4"}

	for seed := uint64(1); seed <= 10; seed++ {
		repo := newMemoryDuelRepo()
		svc := NewService(repo, handleIsID{}, quietJudge{}, selector.New(rand.NewPCG(seed, 7)),
			concurrency.NewLockManager(), nil, Config{})

		var wg sync.WaitGroup
		for w := range participants {
			wg.Add(1)
			go func(rng *rand.Rand) {
				defer wg.Done()
				for step := 0; step < 100; step++ {
					randomStep(ctx, svc, rng, participants)
					for p, n := range repo.openDuels() {
						assert.LessOrEqualf(t, n, 1, "seed %d: %s has %d open duels", seed, p, n)
					}
				}
			}(rand.New(rand.NewPCG(seed, uint64(w))))
		}
		wg.Wait()
	}
}
