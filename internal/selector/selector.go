// Package selector picks duel problem sets from the judge catalog.
package selector

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// Selection tuning
const (
	MinProblems   = 3
	MaxProblems   = 4
	PerProbeLimit = 2
	ProbeStep     = 100
)

// Selector draws problems near a target rating. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Selector. A nil source uses a randomly seeded PCG.
func New(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{rng: rand.New(src)}
}

// ProbeRatings returns the order ratings are tried in
func ProbeRatings(r int) []int {
	return []int{r, r + ProbeStep, r - ProbeStep, r + 2*ProbeStep, r - 2*ProbeStep}
}

// ProblemCount returns the number of problems for a new duel
func (s *Selector) ProblemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MinProblems + s.rng.IntN(MaxProblems-MinProblems+1)
}

// Select returns exactly count standard problems around rating whose names are
// not in excluded, or domain.ErrInsufficientProblems.
func (s *Selector) Select(catalog []domain.Problem, rating int, excluded map[string]struct{}, count int) ([]domain.Problem, error) {
	byRating := make(map[int][]domain.Problem)
	for _, p := range catalog {
		if !p.IsStandard() {
			continue
		}
		if _, skip := excluded[p.Name]; skip {
			continue
		}
		byRating[p.Rating] = append(byRating[p.Rating], p)
	}

	picked := make([]domain.Problem, 0, count)
	seen := make(map[string]struct{}, count)
	for _, probe := range ProbeRatings(rating) {
		if len(picked) >= count {
			break
		}
		candidates := dedupe(byRating[probe], seen)
		s.shuffle(candidates)
		if len(candidates) > PerProbeLimit {
			candidates = candidates[:PerProbeLimit]
		}
		for _, p := range candidates {
			seen[p.Name] = struct{}{}
		}
		picked = append(picked, candidates...)
	}

	if len(picked) < count {
		return nil, fmt.Errorf("%w: found %d of %d near rating %d", domain.ErrInsufficientProblems, len(picked), count, rating)
	}
	return picked[:count], nil
}

func (s *Selector) shuffle(problems []domain.Problem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(problems), func(i, j int) {
		problems[i], problems[j] = problems[j], problems[i]
	})
}

// dedupe copies problems, dropping names already taken. Problems sharing a
// name across divisions count once.
func dedupe(problems []domain.Problem, seen map[string]struct{}) []domain.Problem {
	out := make([]domain.Problem, 0, len(problems))
	local := make(map[string]struct{}, len(problems))
	for _, p := range problems {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		if _, ok := local[p.Name]; ok {
			continue
		}
		local[p.Name] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Names returns the identifiers stored on a duel
func Names(problems []domain.Problem) []string {
	names := make([]string, len(problems))
	for i, p := range problems {
		names[i] = p.Name
	}
	return names
}

// ExclusionSet collects every problem name appearing in the given histories
func ExclusionSet(histories ...[]domain.Submission) map[string]struct{} {
	set := make(map[string]struct{})
	for _, h := range histories {
		for _, sub := range h {
			set[sub.ProblemName] = struct{}{}
		}
	}
	return set
}
