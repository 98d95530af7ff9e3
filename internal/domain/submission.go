package domain

import (
	"fmt"
	"time"
)

// Verdict is the judge's classification of a submission
type Verdict string

const (
	VerdictOK               Verdict = "OK"
	VerdictTesting          Verdict = "TESTING"
	VerdictCompilationError Verdict = "COMPILATION_ERROR"
	VerdictWrongAnswer      Verdict = "WRONG_ANSWER"
	VerdictTimeLimit        Verdict = "TIME_LIMIT_EXCEEDED"
	VerdictMemoryLimit      Verdict = "MEMORY_LIMIT_EXCEEDED"
	VerdictRuntimeError     Verdict = "RUNTIME_ERROR"
	VerdictPending          Verdict = ""
)

// IsAccepted reports an OK verdict
func (v Verdict) IsAccepted() bool {
	return v == VerdictOK
}

// IsPending reports a submission the judge has not finished with
func (v Verdict) IsPending() bool {
	return v == VerdictPending || v == VerdictTesting
}

// IsRejected reports any judged, non-accepted verdict
func (v Verdict) IsRejected() bool {
	return !v.IsAccepted() && !v.IsPending()
}

// IsPenalty reports whether a duel charges a penalty for this verdict.
// Compilation errors are free.
func (v Verdict) IsPenalty() bool {
	return v.IsRejected() && v != VerdictCompilationError
}

// Submission is one observed judge submission. IDs increase monotonically per participant.
type Submission struct {
	ID            int64     `json:"id"`
	ContestID     int       `json:"contest_id"`
	ProblemIndex  string    `json:"problem_index"`
	ProblemName   string    `json:"problem_name"`
	ProblemRating int       `json:"problem_rating,omitempty"`
	Verdict       Verdict   `json:"verdict"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProblemKey matches Problem.Key
func (s Submission) ProblemKey() string {
	return fmt.Sprintf("%d%s", s.ContestID, s.ProblemIndex)
}
