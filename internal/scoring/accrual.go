package scoring

import (
	"slices"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// Accrual is the result of folding new submissions into a balance
type Accrual struct {
	Delta        int64
	NewWatermark int64
	Accepted     int
}

// BasePoints returns the reward for solving a problem of the given rating.
// Unrated problems count as the floor rating.
func BasePoints(rating int) int64 {
	if rating == 0 {
		rating = BaseRatingFloor
	}
	if rating < BaseRatingFloor {
		return LowRatingPoints
	}
	return BaseRatingPoints + int64((rating-BaseRatingFloor)/RatingStep)*PointsPerStep
}

// IsFirstAttempt reports whether sub has no earlier rejected attempt on the
// same problem in history.
func IsFirstAttempt(sub domain.Submission, history []domain.Submission) bool {
	key := sub.ProblemKey()
	for _, h := range history {
		if h.ProblemKey() == key && h.Verdict.IsRejected() && h.CreatedAt.Before(sub.CreatedAt) {
			return false
		}
	}
	return true
}

// SubmissionPoints returns the reward for one accepted submission
func SubmissionPoints(sub domain.Submission, history []domain.Submission) int64 {
	points := BasePoints(sub.ProblemRating)
	if IsFirstAttempt(sub, history) {
		points += FirstAttemptBonus
	}
	return points
}

// NewSubmissions returns the submissions above watermark, ascending by id
func NewSubmissions(recent []domain.Submission, watermark int64) []domain.Submission {
	fresh := make([]domain.Submission, 0, len(recent))
	for _, s := range recent {
		if s.ID > watermark {
			fresh = append(fresh, s)
		}
	}
	slices.SortFunc(fresh, func(a, b domain.Submission) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return fresh
}

// HasAccepted reports whether any submission was accepted
func HasAccepted(subs []domain.Submission) bool {
	return slices.ContainsFunc(subs, func(s domain.Submission) bool {
		return s.Verdict.IsAccepted()
	})
}

// Accrue folds fresh submissions (already above the watermark, ascending)
// into a delta. The watermark advances to the highest id seen, but never past
// a submission that is still being judged.
func Accrue(fresh, history []domain.Submission, watermark int64) Accrual {
	acc := Accrual{NewWatermark: watermark}
	for _, s := range fresh {
		if s.Verdict.IsPending() {
			break
		}
		if s.ID > acc.NewWatermark {
			acc.NewWatermark = s.ID
		}
		if !s.Verdict.IsAccepted() {
			continue
		}
		acc.Delta += SubmissionPoints(s, history)
		acc.Accepted++
	}
	return acc
}
