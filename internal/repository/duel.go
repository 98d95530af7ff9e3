package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// HistoryCursor positions a keyset page of finished duels.
// A zero cursor starts from the newest duel.
type HistoryCursor struct {
	FinishedAt time.Time
	ID         uuid.UUID
}

// IsZero reports whether the cursor points at the beginning
func (c HistoryCursor) IsZero() bool {
	return c.FinishedAt.IsZero() && c.ID == uuid.Nil
}

// Duel defines the interface for duel data access
type Duel interface {
	// CreateDuel persists a PENDING duel with its problem set. It returns
	// domain.ErrAlreadyInDuel if either participant already has an open duel.
	CreateDuel(ctx context.Context, duel *domain.Duel) error
	GetDuel(ctx context.Context, id uuid.UUID) (*domain.Duel, error)

	// GetOpenDuel returns the participant's non-terminal duel, or domain.ErrDuelNotFound
	GetOpenDuel(ctx context.Context, participantID string) (*domain.Duel, error)
	ListPendingDuels(ctx context.Context) ([]domain.Duel, error)

	// TransitionDuel moves a duel from one status to another only if it is
	// still in from. It reports whether the transition happened.
	TransitionDuel(ctx context.Context, id uuid.UUID, from, to domain.DuelStatus, at time.Time) (bool, error)

	// MarkSideComplete sets the completion flag for side on an ACTIVE duel and
	// returns the updated duel, or domain.ErrNoActiveDuel if it is no longer active.
	MarkSideComplete(ctx context.Context, id uuid.UUID, side domain.Side) (*domain.Duel, error)

	// ListAwaitingJudgement returns ACTIVE duels where both sides have
	// completed but no outcome was settled, oldest first
	ListAwaitingJudgement(ctx context.Context) ([]domain.Duel, error)

	// ListFinishedDuels returns up to limit terminal duels for participantID
	// strictly older than cursor, newest first.
	ListFinishedDuels(ctx context.Context, participantID string, cursor HistoryCursor, limit int) ([]domain.Duel, error)

	// Transaction support
	BeginDuelTx(ctx context.Context) (DuelTx, error)
}

// DuelTx extends Tx with the operations a settlement must apply together
type DuelTx interface {
	Tx // Commit, Rollback

	// CompleteDuel moves an ACTIVE duel to COMPLETE with its outcome. It
	// reports false if the duel was no longer ACTIVE.
	CompleteDuel(ctx context.Context, id uuid.UUID, outcome domain.Outcome, finishedAt time.Time) (bool, error)

	// AddPoints applies delta to a balance atomically, creating it at
	// startingValue first if it does not exist.
	AddPoints(ctx context.Context, communityID, participantID string, delta, startingValue int64) error
}
