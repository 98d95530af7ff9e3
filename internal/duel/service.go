package duel

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/judge"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/repository"
	"github.com/osse101/DuelBot_Go/internal/scoring"
	"github.com/osse101/DuelBot_Go/internal/selector"
	"github.com/osse101/DuelBot_Go/internal/settlement"
)

// Service defines the interface for duel operations
type Service interface {
	// Challenge issues a PENDING duel. A nil rating uses the suggested rating.
	Challenge(ctx context.Context, communityID, challengerID, challengeeID string, rating *int) (*domain.Duel, error)
	Accept(ctx context.Context, actorID string) (*domain.Duel, error)
	Complete(ctx context.Context, actorID string) (*domain.CompletionResult, error)
	Cancel(ctx context.Context, actorID string) (domain.CancelResult, *domain.Duel, error)

	// ExpireDuel moves a still-PENDING duel to EXPIRED. It reports false when
	// the duel had already left PENDING.
	ExpireDuel(ctx context.Context, id uuid.UUID) (bool, error)

	// JudgeAwaiting judges and settles ACTIVE duels whose sides have both
	// completed, as left behind by a judge outage. It reports how many settled.
	JudgeAwaiting(ctx context.Context) (int, error)
	GetOpenDuel(ctx context.Context, participantID string) (*domain.Duel, error)
	ListPendingDuels(ctx context.Context) ([]domain.Duel, error)

	// History yields the participant's terminal duels newest first, one page
	// per store read. Each range over it starts again from the newest.
	History(ctx context.Context, participantID string) iter.Seq2[domain.Duel, error]
}

// Config holds duel tuning
type Config struct {
	StartingPoints  int64
	HistoryPageSize int
}

func (c Config) withDefaults() Config {
	if c.StartingPoints == 0 {
		c.StartingPoints = domain.DefaultStartingPoints
	}
	if c.HistoryPageSize <= 0 {
		c.HistoryPageSize = DefaultHistoryPageSize
	}
	return c
}

type service struct {
	repo     repository.Duel
	handles  repository.Handles
	judge    judge.Client
	selector *selector.Selector
	locker   concurrency.Locker
	eventBus event.Bus
	cfg      Config
	now      func() time.Time
}

// NewService creates a new duel service
func NewService(repo repository.Duel, handles repository.Handles, judgeClient judge.Client, sel *selector.Selector, locker concurrency.Locker, eventBus event.Bus, cfg Config) Service {
	return &service{
		repo:     repo,
		handles:  handles,
		judge:    judgeClient,
		selector: sel,
		locker:   locker,
		eventBus: eventBus,
		cfg:      cfg.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Challenge implements Service
func (s *service) Challenge(ctx context.Context, communityID, challengerID, challengeeID string, rating *int) (*domain.Duel, error) {
	log := logger.FromContext(ctx)

	if challengerID == challengeeID {
		return nil, domain.ErrSelfChallenge
	}
	for _, id := range []string{challengerID, challengeeID} {
		if err := s.ensureNotDueling(ctx, id); err != nil {
			return nil, err
		}
	}

	handleA, err := s.handles.GetHandle(ctx, communityID, challengerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetHandle, err)
	}
	handleB, err := s.handles.GetHandle(ctx, communityID, challengeeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetHandle, err)
	}

	target, err := s.resolveRating(ctx, handleA, handleB, rating)
	if err != nil {
		return nil, err
	}

	historyA, err := s.judge.UserSubmissions(ctx, handleA, FetchAllSubmissions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetHistory, err)
	}
	historyB, err := s.judge.UserSubmissions(ctx, handleB, FetchAllSubmissions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetHistory, err)
	}
	catalog, err := s.judge.Problems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetCatalog, err)
	}

	problems, err := s.selector.Select(catalog, target, selector.ExclusionSet(historyA, historyB), s.selector.ProblemCount())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSelectProblems, err)
	}

	duel := &domain.Duel{
		ID:           uuid.New(),
		CommunityID:  communityID,
		ChallengerID: challengerID,
		ChallengeeID: challengeeID,
		Status:       domain.DuelStatusPending,
		Rating:       target,
		Problems:     selector.Names(problems),
		IssuedAt:     s.now(),
	}
	if err := s.repo.CreateDuel(ctx, duel); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreateDuel, err)
	}

	log.Info(LogMsgChallengeIssued, "duel_id", duel.ID, "challenger", challengerID, "challengee", challengeeID, "rating", target)
	s.publish(ctx, event.NewDuelEvent(event.DuelChallenged, duel))
	return duel, nil
}

func (s *service) ensureNotDueling(ctx context.Context, participantID string) error {
	_, err := s.repo.GetOpenDuel(ctx, participantID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", domain.ErrAlreadyInDuel, participantID)
	case errors.Is(err, domain.ErrDuelNotFound):
		return nil
	default:
		return fmt.Errorf("%s: %w", ErrContextFailedToGetOpenDuel, err)
	}
}

func (s *service) resolveRating(ctx context.Context, handleA, handleB string, requested *int) (int, error) {
	if requested != nil {
		return scoring.NormalizeRating(*requested)
	}
	ratingA, err := s.judge.UserRating(ctx, handleA)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToGetRating, err)
	}
	ratingB, err := s.judge.UserRating(ctx, handleB)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToGetRating, err)
	}
	return scoring.SuggestedRating(ratingA, ratingB), nil
}

// Accept implements Service. Only the challengee of a PENDING duel may accept.
func (s *service) Accept(ctx context.Context, actorID string) (*domain.Duel, error) {
	open, err := s.openDuel(ctx, actorID, domain.ErrNoPendingChallenge)
	if err != nil {
		return nil, err
	}
	if open.ChallengeeID != actorID {
		return nil, domain.ErrNoPendingChallenge
	}

	unlock, err := s.lock(ctx, open.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ok, err := s.repo.TransitionDuel(ctx, open.ID, domain.DuelStatusPending, domain.DuelStatusActive, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToTransition, err)
	}
	if !ok {
		return nil, domain.ErrNoPendingChallenge
	}

	duel, err := s.repo.GetDuel(ctx, open.ID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgChallengeAccepted, "duel_id", duel.ID)
	s.publish(ctx, event.NewDuelEvent(event.DuelAccepted, duel))
	return duel, nil
}

// Complete implements Service. Judging runs once both sides have completed;
// if the judge cannot be reached the duel stays ACTIVE and a later Complete
// from either side retries.
func (s *service) Complete(ctx context.Context, actorID string) (*domain.CompletionResult, error) {
	log := logger.FromContext(ctx)

	open, err := s.openDuel(ctx, actorID, domain.ErrNoActiveDuel)
	if err != nil {
		return nil, err
	}
	if open.Status != domain.DuelStatusActive {
		return nil, domain.ErrNoActiveDuel
	}
	side, _ := open.SideOf(actorID)

	unlock, err := s.lock(ctx, open.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	duel, err := s.repo.MarkSideComplete(ctx, open.ID, side)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToMarkComplete, err)
	}
	log.Info(LogMsgSideCompleted, "duel_id", duel.ID, "side", side)

	if !duel.BothCompleted() {
		return &domain.CompletionResult{Status: domain.CompletionWaiting, Duel: duel}, nil
	}
	return s.finish(ctx, duel)
}

// finish judges and settles a duel both sides have completed. The caller
// holds the duel lock.
func (s *service) finish(ctx context.Context, duel *domain.Duel) (*domain.CompletionResult, error) {
	log := logger.FromContext(ctx)

	outcome, err := s.judgeDuel(ctx, duel)
	if err != nil {
		if errors.Is(err, domain.ErrJudgeUnavailable) {
			log.Warn(LogMsgJudgeDeferred, "duel_id", duel.ID, "error", err)
		}
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToJudge, err)
	}

	deltas := settlement.Plan(duel, outcome)
	if err := s.settle(ctx, duel, outcome, deltas); err != nil {
		return nil, err
	}

	final, err := s.repo.GetDuel(ctx, duel.ID)
	if err != nil {
		return nil, err
	}

	log.Info(LogMsgDuelSettled, "duel_id", final.ID, "winner", outcome.Winner,
		"challenger_score", outcome.ChallengerScore, "challengee_score", outcome.ChallengeeScore)
	s.publish(ctx, event.NewDuelCompletedEvent(final, outcome, deltas))
	return &domain.CompletionResult{Status: domain.CompletionFinished, Duel: final, Outcome: &outcome}, nil
}

// JudgeAwaiting implements Service. It stops at the first judge outage and
// leaves the rest for the next run.
func (s *service) JudgeAwaiting(ctx context.Context) (int, error) {
	awaiting, err := s.repo.ListAwaitingJudgement(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToListAwaiting, err)
	}

	settled := 0
	for _, d := range awaiting {
		ok, err := s.judgeAwaiting(ctx, d.ID)
		if errors.Is(err, domain.ErrJudgeUnavailable) {
			return settled, err
		}
		if err != nil {
			logger.FromContext(ctx).Error(LogMsgAwaitingJudgeFailed, "duel_id", d.ID, "error", err)
			continue
		}
		if ok {
			settled++
		}
	}
	return settled, nil
}

func (s *service) judgeAwaiting(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return false, err
	}
	defer unlock()

	// A participant's own Complete may have settled it since the listing
	duel, err := s.repo.GetDuel(ctx, id)
	if err != nil {
		return false, err
	}
	if duel.Status != domain.DuelStatusActive || !duel.BothCompleted() {
		return false, nil
	}
	if _, err := s.finish(ctx, duel); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) judgeDuel(ctx context.Context, duel *domain.Duel) (domain.Outcome, error) {
	subsA, err := s.fetchSubmissions(ctx, duel.CommunityID, duel.ChallengerID)
	if err != nil {
		return domain.Outcome{}, err
	}
	subsB, err := s.fetchSubmissions(ctx, duel.CommunityID, duel.ChallengeeID)
	if err != nil {
		return domain.Outcome{}, err
	}
	return scoring.Judge(duel, subsA, subsB)
}

// fetchSubmissions reads the participant's whole history. scoring.Judge
// filters it to the duel window.
func (s *service) fetchSubmissions(ctx context.Context, communityID, participantID string) ([]domain.Submission, error) {
	handle, err := s.handles.GetHandle(ctx, communityID, participantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetHandle, err)
	}
	subs, err := s.judge.UserSubmissions(ctx, handle, FetchAllSubmissions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetHistory, err)
	}
	return subs, nil
}

func (s *service) settle(ctx context.Context, duel *domain.Duel, outcome domain.Outcome, deltas []domain.PointsDelta) error {
	tx, err := s.repo.BeginDuelTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := settlement.Apply(ctx, tx, duel, outcome, deltas, s.now(), s.cfg.StartingPoints); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSettle, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToCommit, err)
	}
	return nil
}

// Cancel implements Service
func (s *service) Cancel(ctx context.Context, actorID string) (domain.CancelResult, *domain.Duel, error) {
	open, err := s.openDuel(ctx, actorID, domain.ErrNoActiveDuel)
	if err != nil {
		return "", nil, err
	}
	if open.Status == domain.DuelStatusActive {
		return domain.CancelMustComplete, open, nil
	}

	result, target, eventType := domain.CancelDeclined, domain.DuelStatusDeclined, event.DuelDeclined
	if actorID == open.ChallengerID {
		result, target, eventType = domain.CancelWithdrawn, domain.DuelStatusWithdrawn, event.DuelWithdrawn
	}

	unlock, err := s.lock(ctx, open.ID)
	if err != nil {
		return "", nil, err
	}
	defer unlock()

	ok, err := s.repo.TransitionDuel(ctx, open.ID, domain.DuelStatusPending, target, s.now())
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", ErrContextFailedToTransition, err)
	}

	duel, err := s.repo.GetDuel(ctx, open.ID)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		// Lost a race with accept or expiry
		if duel.Status == domain.DuelStatusActive {
			return domain.CancelMustComplete, duel, nil
		}
		return "", nil, domain.ErrNoActiveDuel
	}

	logger.FromContext(ctx).Info(LogMsgDuelCancelled, "duel_id", duel.ID, "result", result)
	s.publish(ctx, event.NewDuelEvent(eventType, duel))
	return result, duel, nil
}

// ExpireDuel implements Service
func (s *service) ExpireDuel(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContext(ctx)

	unlock, err := s.lock(ctx, id)
	if err != nil {
		return false, err
	}
	defer unlock()

	ok, err := s.repo.TransitionDuel(ctx, id, domain.DuelStatusPending, domain.DuelStatusExpired, s.now())
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrContextFailedToTransition, err)
	}
	if !ok {
		log.Debug(LogMsgExpiryNoop, "duel_id", id)
		return false, nil
	}

	duel, err := s.repo.GetDuel(ctx, id)
	if err != nil {
		return true, err
	}
	log.Info(LogMsgDuelExpired, "duel_id", id)
	s.publish(ctx, event.NewDuelEvent(event.DuelExpired, duel))
	return true, nil
}

// GetOpenDuel implements Service
func (s *service) GetOpenDuel(ctx context.Context, participantID string) (*domain.Duel, error) {
	return s.repo.GetOpenDuel(ctx, participantID)
}

// ListPendingDuels implements Service
func (s *service) ListPendingDuels(ctx context.Context) ([]domain.Duel, error) {
	return s.repo.ListPendingDuels(ctx)
}

// History implements Service
func (s *service) History(ctx context.Context, participantID string) iter.Seq2[domain.Duel, error] {
	return func(yield func(domain.Duel, error) bool) {
		var cursor repository.HistoryCursor
		for {
			page, err := s.repo.ListFinishedDuels(ctx, participantID, cursor, s.cfg.HistoryPageSize)
			if err != nil {
				yield(domain.Duel{}, fmt.Errorf("%s: %w", ErrContextFailedToListHistory, err))
				return
			}
			for _, d := range page {
				if !yield(d, nil) {
					return
				}
			}
			if len(page) < s.cfg.HistoryPageSize {
				return
			}
			last := page[len(page)-1]
			cursor = repository.HistoryCursor{FinishedAt: *last.FinishedAt, ID: last.ID}
		}
	}
}

// openDuel maps a missing duel to notFound
func (s *service) openDuel(ctx context.Context, actorID string, notFound error) (*domain.Duel, error) {
	open, err := s.repo.GetOpenDuel(ctx, actorID)
	if errors.Is(err, domain.ErrDuelNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetOpenDuel, err)
	}
	return open, nil
}

func (s *service) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	unlock, err := s.locker.Lock(ctx, lockKeyPrefix+id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToLockDuel, err)
	}
	return unlock, nil
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "event_type", evt.Type, "error", err)
	}
}
