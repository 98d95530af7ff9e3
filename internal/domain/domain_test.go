package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuelStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   DuelStatus
		terminal bool
	}{
		{DuelStatusPending, false},
		{DuelStatusActive, false},
		{DuelStatusComplete, true},
		{DuelStatusExpired, true},
		{DuelStatusWithdrawn, true},
		{DuelStatusDeclined, true},
		{DuelStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
	assert.False(t, DuelStatus("bogus").Valid())
}

func TestDuel_ResultFor(t *testing.T) {
	d := Duel{ChallengerID: "a", ChallengeeID: "b", Status: DuelStatusComplete, Winner: WinnerChallengee}
	assert.Equal(t, DuelResultLost, d.ResultFor("a"))
	assert.Equal(t, DuelResultWon, d.ResultFor("b"))

	d.Winner = WinnerDraw
	assert.Equal(t, DuelResultDraw, d.ResultFor("a"))

	d.Status = DuelStatusExpired
	assert.Equal(t, DuelResultNone, d.ResultFor("a"))
}

func TestDuel_SideOf(t *testing.T) {
	d := Duel{ChallengerID: "a", ChallengeeID: "b"}

	side, ok := d.SideOf("a")
	assert.True(t, ok)
	assert.Equal(t, SideChallenger, side)

	side, ok = d.SideOf("b")
	assert.True(t, ok)
	assert.Equal(t, SideChallengee, side)

	_, ok = d.SideOf("c")
	assert.False(t, ok)
	assert.Equal(t, "a", d.Opponent("b"))
}

func TestVerdict(t *testing.T) {
	assert.True(t, VerdictOK.IsAccepted())
	assert.True(t, VerdictTesting.IsPending())
	assert.True(t, VerdictPending.IsPending())
	assert.True(t, VerdictCompilationError.IsRejected())
	assert.False(t, VerdictCompilationError.IsPenalty())
	assert.True(t, VerdictWrongAnswer.IsPenalty())
	assert.False(t, VerdictTesting.IsPenalty())
	assert.False(t, VerdictOK.IsRejected())
}

func TestProblem(t *testing.T) {
	p := Problem{ContestID: 1742, Index: "A", Name: "Sum", Rating: 800}
	assert.Equal(t, "1742A", p.Key())
	assert.Equal(t, "https://codeforces.com/problemset/problem/1742/A", p.URL())
	assert.True(t, p.IsStandard())

	p.Tags = []string{"math", NonStandardTag}
	assert.False(t, p.IsStandard())
	assert.False(t, Problem{ContestID: 1, Index: "B"}.IsStandard())
}

func TestRankFor(t *testing.T) {
	tests := []struct {
		points int64
		title  string
	}{
		{-200, "Newbie"},
		{1299, "Newbie"},
		{1300, "Pupil"},
		{1500, "Expert"},
		{1699, "Candidate Master"},
		{2099, "International Grandmaster"},
		{2100, "Legendary Grandmaster"},
		{99999, "Legendary Grandmaster"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.title, RankFor(tt.points).Title, "points=%d", tt.points)
	}
}

func TestBuildStandings(t *testing.T) {
	got := BuildStandings([]Balance{
		{ParticipantID: "a", Total: 1620},
		{ParticipantID: "b", Total: 1480},
	})

	assert.Equal(t, []Standing{
		{Position: 1, ParticipantID: "a", Total: 1620, Rank: "Candidate Master"},
		{Position: 2, ParticipantID: "b", Total: 1480, Rank: "Specialist"},
	}, got)
}

func TestResetPeriod(t *testing.T) {
	ts := time.Date(2026, time.October, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10", ResetPeriod(ts))

	cairo := time.FixedZone("EET", 2*60*60)
	assert.Equal(t, "2026-09", ResetPeriod(time.Date(2026, time.October, 1, 1, 0, 0, 0, cairo)))
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]DuelStatus]bool{
		{DuelStatusPending, DuelStatusActive}:    true,
		{DuelStatusPending, DuelStatusExpired}:   true,
		{DuelStatusPending, DuelStatusWithdrawn}: true,
		{DuelStatusPending, DuelStatusDeclined}:  true,
		{DuelStatusActive, DuelStatusComplete}:   true,
	}
	all := []DuelStatus{
		DuelStatusPending, DuelStatusActive, DuelStatusComplete,
		DuelStatusExpired, DuelStatusWithdrawn, DuelStatusDeclined,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]DuelStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
