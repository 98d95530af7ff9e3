// Package scoring holds the pure arithmetic behind duel judging and
// submission accrual. Nothing here blocks.
package scoring

import (
	"fmt"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// ProblemScore is the score for a solved problem after penalties
func ProblemScore(penalties int) int {
	return max(0, ProblemMaxScore-PenaltyPerMiss*penalties)
}

// ScoreSide totals one participant's score over the duel's problems using
// submissions made at or after start.
func ScoreSide(subs []domain.Submission, problems []string, start time.Time) int {
	inSet := make(map[string]struct{}, len(problems))
	for _, name := range problems {
		inSet[name] = struct{}{}
	}

	byProblem := make(map[string][]domain.Submission, len(problems))
	for _, s := range subs {
		if s.CreatedAt.Before(start) {
			continue
		}
		if _, ok := inSet[s.ProblemName]; !ok {
			continue
		}
		byProblem[s.ProblemName] = append(byProblem[s.ProblemName], s)
	}

	total := 0
	for _, name := range problems {
		attempts := byProblem[name]
		solvedAt, solved := earliestAccepted(attempts)
		if !solved {
			continue
		}
		penalties := 0
		for _, s := range attempts {
			if s.Verdict.IsPenalty() && s.CreatedAt.Before(solvedAt) {
				penalties++
			}
		}
		total += ProblemScore(penalties)
	}
	return total
}

func earliestAccepted(subs []domain.Submission) (time.Time, bool) {
	var (
		first time.Time
		found bool
	)
	for _, s := range subs {
		if !s.Verdict.IsAccepted() {
			continue
		}
		if !found || s.CreatedAt.Before(first) {
			first = s.CreatedAt
			found = true
		}
	}
	return first, found
}

// Judge scores both sides of a started duel
func Judge(d *domain.Duel, challengerSubs, challengeeSubs []domain.Submission) (domain.Outcome, error) {
	if d.StartedAt == nil {
		return domain.Outcome{}, fmt.Errorf("%w: duel %s has no start time", domain.ErrNoActiveDuel, d.ID)
	}
	a := ScoreSide(challengerSubs, d.Problems, *d.StartedAt)
	b := ScoreSide(challengeeSubs, d.Problems, *d.StartedAt)

	outcome := domain.Outcome{ChallengerScore: a, ChallengeeScore: b}
	switch {
	case a > b:
		outcome.Winner = domain.WinnerChallenger
	case b > a:
		outcome.Winner = domain.WinnerChallengee
	default:
		outcome.Winner = domain.WinnerDraw
	}
	return outcome, nil
}

// SuggestedRating derives a duel rating from both participants' ratings
func SuggestedRating(a, b int) int {
	lower := min(a, b)
	lower -= lower % RatingStep
	return max(MinDuelRating, lower+RatingOffset)
}

// NormalizeRating rounds a requested rating to the nearest step and checks bounds
func NormalizeRating(rating int) (int, error) {
	rounded := (rating + RatingStep/2) / RatingStep * RatingStep
	if rounded < MinDuelRating || rounded > MaxDuelRating {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", domain.ErrInvalidRating, rating, MinDuelRating, MaxDuelRating)
	}
	return rounded, nil
}
