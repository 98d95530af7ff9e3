package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

const duelColumns = `
	d.id, d.community_id, d.challenger_id, d.challengee_id, d.status, d.rating,
	d.winner, d.challenger_score, d.challengee_score,
	d.issued_at, d.started_at, d.finished_at,
	p.problem_names, p.challenger_completed, p.challengee_completed`

const duelFrom = `FROM duels d JOIN duel_problem_sets p ON p.duel_id = d.id`

// DuelRepository implements repository.Duel for PostgreSQL
type DuelRepository struct {
	db *pgxpool.Pool
}

// NewDuelRepository creates a new DuelRepository
func NewDuelRepository(db *pgxpool.Pool) *DuelRepository {
	return &DuelRepository{db: db}
}

// CreateDuel inserts a PENDING duel after taking advisory locks on both
// participants so concurrent challenges cannot both pass the open-duel check.
func (r *DuelRepository) CreateDuel(ctx context.Context, duel *domain.Duel) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	participants := []string{duel.ChallengerID, duel.ChallengeeID}
	sort.Strings(participants)
	for _, p := range participants {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, hashLockKey(participantLockPrefix+p)); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToAcquireLock, err)
		}
	}

	var busy bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM duels
			WHERE status IN ('PENDING', 'ACTIVE')
			  AND (challenger_id = ANY($1) OR challengee_id = ANY($1))
		)`, participants).Scan(&busy)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCheckOpenDuels, err)
	}
	if busy {
		return domain.ErrAlreadyInDuel
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO duels (id, community_id, challenger_id, challengee_id, status, rating, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		duel.ID, duel.CommunityID, duel.ChallengerID, duel.ChallengeeID,
		string(duel.Status), duel.Rating, duel.IssuedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyInDuel
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateDuel, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO duel_problem_sets (duel_id, problem_names) VALUES ($1, $2)`,
		duel.ID, duel.Problems)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertProblemSet, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// GetDuel retrieves a duel by ID
func (r *DuelRepository) GetDuel(ctx context.Context, id uuid.UUID) (*domain.Duel, error) {
	row := r.db.QueryRow(ctx, `SELECT `+duelColumns+` `+duelFrom+` WHERE d.id = $1`, id)
	duel, err := scanDuel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDuelNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetDuel, err)
	}
	return duel, nil
}

// GetOpenDuel returns the participant's PENDING or ACTIVE duel
func (r *DuelRepository) GetOpenDuel(ctx context.Context, participantID string) (*domain.Duel, error) {
	row := r.db.QueryRow(ctx, `SELECT `+duelColumns+` `+duelFrom+`
		WHERE d.status IN ('PENDING', 'ACTIVE')
		  AND (d.challenger_id = $1 OR d.challengee_id = $1)
		ORDER BY d.issued_at DESC
		LIMIT 1`, participantID)
	duel, err := scanDuel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDuelNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetOpenDuel, err)
	}
	return duel, nil
}

// ListPendingDuels returns every PENDING duel, oldest first
func (r *DuelRepository) ListPendingDuels(ctx context.Context) ([]domain.Duel, error) {
	rows, err := r.db.Query(ctx, `SELECT `+duelColumns+` `+duelFrom+`
		WHERE d.status = 'PENDING' ORDER BY d.issued_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListPendingDuels, err)
	}
	return collectDuels(rows)
}

// ListAwaitingJudgement returns ACTIVE duels with both completion flags set
func (r *DuelRepository) ListAwaitingJudgement(ctx context.Context) ([]domain.Duel, error) {
	rows, err := r.db.Query(ctx, `SELECT `+duelColumns+` `+duelFrom+`
		WHERE d.status = 'ACTIVE' AND p.challenger_completed AND p.challengee_completed
		ORDER BY d.started_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListAwaitingDuels, err)
	}
	return collectDuels(rows)
}

// TransitionDuel performs a compare-and-transition on the duel status
func (r *DuelRepository) TransitionDuel(ctx context.Context, id uuid.UUID, from, to domain.DuelStatus, at time.Time) (bool, error) {
	if !domain.CanTransition(from, to) || to == domain.DuelStatusComplete {
		return false, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidDuelTransition, from, to)
	}

	query := `UPDATE duels SET status = $3, finished_at = $4 WHERE id = $1 AND status = $2`
	if to == domain.DuelStatusActive {
		query = `UPDATE duels SET status = $3, started_at = $4 WHERE id = $1 AND status = $2`
	}

	tag, err := r.db.Exec(ctx, query, id, string(from), string(to), at)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToTransitionDuel, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkSideComplete sets one side's completion flag while the duel is ACTIVE
func (r *DuelRepository) MarkSideComplete(ctx context.Context, id uuid.UUID, side domain.Side) (*domain.Duel, error) {
	var column string
	switch side {
	case domain.SideChallenger:
		column = "challenger_completed"
	case domain.SideChallengee:
		column = "challengee_completed"
	default:
		return nil, fmt.Errorf("%s: %q", ErrMsgUnknownSide, side)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE duel_problem_sets p SET `+column+` = TRUE
		FROM duels d
		WHERE p.duel_id = d.id AND d.id = $1 AND d.status = 'ACTIVE'`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToMarkSideComplete, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNoActiveDuel
	}
	return r.GetDuel(ctx, id)
}

// ListFinishedDuels returns one keyset page of terminal duels, newest first
func (r *DuelRepository) ListFinishedDuels(ctx context.Context, participantID string, cursor repository.HistoryCursor, limit int) ([]domain.Duel, error) {
	if limit <= 0 || limit > MaxHistoryPageSize {
		limit = MaxHistoryPageSize
	}

	var before *time.Time
	if !cursor.IsZero() {
		before = &cursor.FinishedAt
	}

	rows, err := r.db.Query(ctx, `SELECT `+duelColumns+` `+duelFrom+`
		WHERE (d.challenger_id = $1 OR d.challengee_id = $1)
		  AND d.finished_at IS NOT NULL
		  AND ($2::timestamptz IS NULL OR (d.finished_at, d.id) < ($2::timestamptz, $3::uuid))
		ORDER BY d.finished_at DESC, d.id DESC
		LIMIT $4`, participantID, before, cursor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListFinishedDuels, err)
	}
	return collectDuels(rows)
}

// BeginDuelTx starts a settlement transaction
func (r *DuelRepository) BeginDuelTx(ctx context.Context) (repository.DuelTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &duelTx{tx: tx}, nil
}

// duelTx implements repository.DuelTx
type duelTx struct {
	tx pgx.Tx
}

func (t *duelTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *duelTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// CompleteDuel records the outcome if the duel is still ACTIVE
func (t *duelTx) CompleteDuel(ctx context.Context, id uuid.UUID, outcome domain.Outcome, finishedAt time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE duels
		SET status = 'COMPLETE', winner = $2, challenger_score = $3, challengee_score = $4, finished_at = $5
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, string(outcome.Winner), outcome.ChallengerScore, outcome.ChallengeeScore, finishedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCompleteDuel, err)
	}
	return tag.RowsAffected() == 1, nil
}

// AddPoints increments a balance in place
func (t *duelTx) AddPoints(ctx context.Context, communityID, participantID string, delta, startingValue int64) error {
	return addPoints(ctx, t.tx, communityID, participantID, delta, startingValue)
}

func scanDuel(row pgx.Row) (*domain.Duel, error) {
	var (
		d      domain.Duel
		status string
		winner *string
	)
	err := row.Scan(
		&d.ID, &d.CommunityID, &d.ChallengerID, &d.ChallengeeID, &status, &d.Rating,
		&winner, &d.ChallengerScore, &d.ChallengeeScore,
		&d.IssuedAt, &d.StartedAt, &d.FinishedAt,
		&d.Problems, &d.ChallengerCompleted, &d.ChallengeeCompleted,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DuelStatus(status)
	if winner != nil {
		d.Winner = domain.Winner(*winner)
	}
	return &d, nil
}

func collectDuels(rows pgx.Rows) ([]domain.Duel, error) {
	defer rows.Close()

	var duels []domain.Duel
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanDuel, err)
		}
		duels = append(duels, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanDuel, err)
	}
	return duels, nil
}

var _ repository.Duel = (*DuelRepository)(nil)
