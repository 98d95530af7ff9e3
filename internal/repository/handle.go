package repository

import (
	"context"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// Handles defines the interface for community membership and judge handle links
type Handles interface {
	LinkHandle(ctx context.Context, handle domain.Handle) error

	// GetHandle returns domain.ErrHandleNotLinked when the participant has no handle
	GetHandle(ctx context.Context, communityID, participantID string) (string, error)
	ListHandles(ctx context.Context, communityID string) ([]domain.Handle, error)
	ListCommunities(ctx context.Context) ([]string, error)

	SetMasterChannel(ctx context.Context, communityID, channelID string) error
	GetSettings(ctx context.Context, communityID string) (*domain.CommunitySettings, error)
	ListSettings(ctx context.Context) ([]domain.CommunitySettings, error)
}
