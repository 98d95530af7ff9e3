// Package settlement turns a judged duel into balance changes and applies
// them together with the COMPLETE transition.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

// Plan returns the balance changes for a judged duel. A scoreless draw changes nothing.
func Plan(d *domain.Duel, outcome domain.Outcome) []domain.PointsDelta {
	a, b := int64(outcome.ChallengerScore), int64(outcome.ChallengeeScore)

	switch outcome.Winner {
	case domain.WinnerChallenger:
		return []domain.PointsDelta{
			{ParticipantID: d.ChallengerID, Delta: a},
			{ParticipantID: d.ChallengeeID, Delta: -(a - b)},
		}
	case domain.WinnerChallengee:
		return []domain.PointsDelta{
			{ParticipantID: d.ChallengeeID, Delta: b},
			{ParticipantID: d.ChallengerID, Delta: -(b - a)},
		}
	case domain.WinnerDraw:
		if a == 0 {
			return nil
		}
		return []domain.PointsDelta{
			{ParticipantID: d.ChallengerID, Delta: a},
			{ParticipantID: d.ChallengeeID, Delta: b},
		}
	default:
		return nil
	}
}

// Apply completes the duel and applies deltas inside tx. It returns
// domain.ErrNoActiveDuel without touching balances if the duel was already
// settled. The caller owns Commit.
func Apply(ctx context.Context, tx repository.DuelTx, d *domain.Duel, outcome domain.Outcome, deltas []domain.PointsDelta, finishedAt time.Time, startingValue int64) error {
	completed, err := tx.CompleteDuel(ctx, d.ID, outcome, finishedAt)
	if err != nil {
		return err
	}
	if !completed {
		return fmt.Errorf("%w: duel %s already settled", domain.ErrNoActiveDuel, d.ID)
	}

	for _, delta := range deltas {
		if err := tx.AddPoints(ctx, d.CommunityID, delta.ParticipantID, delta.Delta, startingValue); err != nil {
			return fmt.Errorf("failed to apply %+d to %s: %w", delta.Delta, delta.ParticipantID, err)
		}
	}
	return nil
}
