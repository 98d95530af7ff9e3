package domain

import (
	"time"

	"github.com/google/uuid"
)

// DuelStatus is the lifecycle state of a duel
type DuelStatus string

const (
	DuelStatusPending   DuelStatus = "PENDING"
	DuelStatusActive    DuelStatus = "ACTIVE"
	DuelStatusComplete  DuelStatus = "COMPLETE"
	DuelStatusExpired   DuelStatus = "EXPIRED"
	DuelStatusWithdrawn DuelStatus = "WITHDRAWN"
	DuelStatusDeclined  DuelStatus = "DECLINED"
)

// IsTerminal reports whether no further transitions are allowed from s
func (s DuelStatus) IsTerminal() bool {
	switch s {
	case DuelStatusPending, DuelStatusActive:
		return false
	case DuelStatusComplete, DuelStatusExpired, DuelStatusWithdrawn, DuelStatusDeclined:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known status
func (s DuelStatus) Valid() bool {
	switch s {
	case DuelStatusPending, DuelStatusActive, DuelStatusComplete,
		DuelStatusExpired, DuelStatusWithdrawn, DuelStatusDeclined:
		return true
	default:
		return false
	}
}

// Winner identifies which side won a completed duel
type Winner string

const (
	WinnerNone       Winner = ""
	WinnerChallenger Winner = "CHALLENGER"
	WinnerChallengee Winner = "CHALLENGEE"
	WinnerDraw       Winner = "DRAW"
)

// Side is one of the two seats in a duel
type Side string

const (
	SideChallenger Side = "challenger"
	SideChallengee Side = "challengee"
)

// DuelResult is a finished duel seen from one participant's seat
type DuelResult string

const (
	DuelResultWon  DuelResult = "Won"
	DuelResultLost DuelResult = "Lost"
	DuelResultDraw DuelResult = "Draw"
	// DuelResultNone covers terminal duels that were never played
	DuelResultNone DuelResult = ""
)

// Duel is a two-participant contest over a fixed problem set
type Duel struct {
	ID                  uuid.UUID  `json:"id"`
	CommunityID         string     `json:"community_id"`
	ChallengerID        string     `json:"challenger_id"`
	ChallengeeID        string     `json:"challengee_id"`
	Status              DuelStatus `json:"status"`
	Rating              int        `json:"rating"`
	Problems            []string   `json:"problems"`
	ChallengerCompleted bool       `json:"challenger_completed"`
	ChallengeeCompleted bool       `json:"challengee_completed"`
	IssuedAt            time.Time  `json:"issued_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	Winner              Winner     `json:"winner,omitempty"`
	ChallengerScore     int        `json:"challenger_score"`
	ChallengeeScore     int        `json:"challengee_score"`
}

// SideOf returns the seat held by participantID
func (d *Duel) SideOf(participantID string) (Side, bool) {
	switch participantID {
	case d.ChallengerID:
		return SideChallenger, true
	case d.ChallengeeID:
		return SideChallengee, true
	default:
		return "", false
	}
}

// Opponent returns the other participant
func (d *Duel) Opponent(participantID string) string {
	if participantID == d.ChallengerID {
		return d.ChallengeeID
	}
	return d.ChallengerID
}

// BothCompleted reports whether both sides have signalled completion
func (d *Duel) BothCompleted() bool {
	return d.ChallengerCompleted && d.ChallengeeCompleted
}

// ResultFor reports how the duel ended for participantID
func (d *Duel) ResultFor(participantID string) DuelResult {
	if d.Status != DuelStatusComplete {
		return DuelResultNone
	}
	switch d.Winner {
	case WinnerDraw:
		return DuelResultDraw
	case WinnerChallenger:
		if participantID == d.ChallengerID {
			return DuelResultWon
		}
		return DuelResultLost
	case WinnerChallengee:
		if participantID == d.ChallengeeID {
			return DuelResultWon
		}
		return DuelResultLost
	default:
		return DuelResultNone
	}
}

// Outcome is the judged result of a duel
type Outcome struct {
	ChallengerScore int    `json:"challenger_score"`
	ChallengeeScore int    `json:"challengee_score"`
	Winner          Winner `json:"winner"`
}

// CompletionStatus tells the caller of complete whether judging happened
type CompletionStatus string

const (
	CompletionWaiting  CompletionStatus = "waiting"
	CompletionFinished CompletionStatus = "finished"
)

// CompletionResult is returned when a participant marks their side complete
type CompletionResult struct {
	Status  CompletionStatus `json:"status"`
	Duel    *Duel            `json:"duel"`
	Outcome *Outcome         `json:"outcome,omitempty"`
}

// CancelResult describes what a cancel request did
type CancelResult string

const (
	CancelWithdrawn    CancelResult = "withdrawn"
	CancelDeclined     CancelResult = "declined"
	CancelMustComplete CancelResult = "mustComplete"
)

// CanTransition reports whether a duel may move from one status to another
func CanTransition(from, to DuelStatus) bool {
	switch from {
	case DuelStatusPending:
		switch to {
		case DuelStatusActive, DuelStatusExpired, DuelStatusWithdrawn, DuelStatusDeclined:
			return true
		case DuelStatusPending, DuelStatusComplete:
			return false
		}
	case DuelStatusActive:
		return to == DuelStatusComplete
	case DuelStatusComplete, DuelStatusExpired, DuelStatusWithdrawn, DuelStatusDeclined:
		return false
	}
	return false
}
