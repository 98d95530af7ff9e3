package repository

import (
	"context"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// Points defines the interface for points balance data access
type Points interface {
	// GetBalance returns the balance or nil when none has been created yet
	GetBalance(ctx context.Context, communityID, participantID string) (*domain.Balance, error)

	// EnsureBalance returns the balance, creating it at startingValue with a zero watermark
	EnsureBalance(ctx context.Context, communityID, participantID string, startingValue int64) (*domain.Balance, error)

	// AdvanceWatermark adds delta and moves the watermark from oldWatermark to
	// newWatermark in one statement. It reports false when the stored watermark
	// no longer equals oldWatermark.
	AdvanceWatermark(ctx context.Context, communityID, participantID string, oldWatermark, newWatermark, delta int64) (bool, error)

	// ListStandings returns balances ordered by total descending
	ListStandings(ctx context.Context, communityID string, limit int) ([]domain.Balance, error)

	BeginResetTx(ctx context.Context) (ResetTx, error)
}

// ResetTx groups the reset marker claim with the balance reset
type ResetTx interface {
	Tx // Commit, Rollback

	// ClaimResetPeriod records period as reset for the community. It reports
	// false if that period was already claimed.
	ClaimResetPeriod(ctx context.Context, communityID, period string) (bool, error)
	ListStandings(ctx context.Context, communityID string, limit int) ([]domain.Balance, error)
	ResetBalances(ctx context.Context, communityID string, value int64) (int64, error)
}
