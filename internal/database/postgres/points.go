package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

const balanceColumns = `community_id, participant_id, total, watermark, updated_at`

// PointsRepository implements repository.Points for PostgreSQL
type PointsRepository struct {
	db *pgxpool.Pool
}

// NewPointsRepository creates a new PointsRepository
func NewPointsRepository(db *pgxpool.Pool) *PointsRepository {
	return &PointsRepository{db: db}
}

// GetBalance returns nil when the participant has no balance yet
func (r *PointsRepository) GetBalance(ctx context.Context, communityID, participantID string) (*domain.Balance, error) {
	b, err := getBalance(ctx, r.db, communityID, participantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetBalance, err)
	}
	return b, nil
}

// EnsureBalance creates the balance at startingValue if missing and returns it
func (r *PointsRepository) EnsureBalance(ctx context.Context, communityID, participantID string, startingValue int64) (*domain.Balance, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO points_balances (community_id, participant_id, total, watermark)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (community_id, participant_id) DO NOTHING`,
		communityID, participantID, startingValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToEnsureBalance, err)
	}

	b, err := getBalance(ctx, r.db, communityID, participantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetBalance, err)
	}
	return b, nil
}

// AdvanceWatermark applies the accrued delta only if nobody moved the watermark meanwhile
func (r *PointsRepository) AdvanceWatermark(ctx context.Context, communityID, participantID string, oldWatermark, newWatermark, delta int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE points_balances
		SET total = total + $5, watermark = $4, updated_at = NOW()
		WHERE community_id = $1 AND participant_id = $2 AND watermark = $3`,
		communityID, participantID, oldWatermark, newWatermark, delta)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToAdvanceWatermark, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListStandings returns the community leaderboard
func (r *PointsRepository) ListStandings(ctx context.Context, communityID string, limit int) ([]domain.Balance, error) {
	return listStandings(ctx, r.db, communityID, limit)
}

// BeginResetTx starts a monthly reset transaction
func (r *PointsRepository) BeginResetTx(ctx context.Context) (repository.ResetTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &resetTx{tx: tx}, nil
}

// resetTx implements repository.ResetTx
type resetTx struct {
	tx pgx.Tx
}

func (t *resetTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *resetTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// ClaimResetPeriod advances the marker only to a later period. Periods are
// "YYYY-MM" strings so lexical order is calendar order.
func (t *resetTx) ClaimResetPeriod(ctx context.Context, communityID, period string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO reset_markers (community_id, last_period, reset_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (community_id) DO UPDATE
		SET last_period = EXCLUDED.last_period, reset_at = EXCLUDED.reset_at
		WHERE reset_markers.last_period < EXCLUDED.last_period`,
		communityID, period)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToClaimResetPeriod, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *resetTx) ListStandings(ctx context.Context, communityID string, limit int) ([]domain.Balance, error) {
	return listStandings(ctx, t.tx, communityID, limit)
}

// ResetBalances sets every total in the community to value. Watermarks are kept.
func (t *resetTx) ResetBalances(ctx context.Context, communityID string, value int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE points_balances SET total = $2, updated_at = NOW()
		WHERE community_id = $1`, communityID, value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToResetBalances, err)
	}
	return tag.RowsAffected(), nil
}

func getBalance(ctx context.Context, q querier, communityID, participantID string) (*domain.Balance, error) {
	var b domain.Balance
	err := q.QueryRow(ctx, `SELECT `+balanceColumns+` FROM points_balances
		WHERE community_id = $1 AND participant_id = $2`, communityID, participantID).
		Scan(&b.CommunityID, &b.ParticipantID, &b.Total, &b.Watermark, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func addPoints(ctx context.Context, q querier, communityID, participantID string, delta, startingValue int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO points_balances (community_id, participant_id, total, watermark)
		VALUES ($1, $2, $3 + $4, 0)
		ON CONFLICT (community_id, participant_id) DO UPDATE
		SET total = points_balances.total + $4, updated_at = NOW()`,
		communityID, participantID, startingValue, delta)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAddPoints, err)
	}
	return nil
}

func listStandings(ctx context.Context, q querier, communityID string, limit int) ([]domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM points_balances
		WHERE community_id = $1
		ORDER BY total DESC, participant_id`
	args := []any{communityID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListStandings, err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.CommunityID, &b.ParticipantID, &b.Total, &b.Watermark, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanBalance, err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListStandings, err)
	}
	return balances, nil
}

var _ repository.Points = (*PointsRepository)(nil)
