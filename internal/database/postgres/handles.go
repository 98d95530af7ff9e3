package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

// HandleRepository implements repository.Handles for PostgreSQL
type HandleRepository struct {
	db *pgxpool.Pool
}

// NewHandleRepository creates a new HandleRepository
func NewHandleRepository(db *pgxpool.Pool) *HandleRepository {
	return &HandleRepository{db: db}
}

// LinkHandle creates or replaces the participant's judge handle
func (r *HandleRepository) LinkHandle(ctx context.Context, h domain.Handle) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO handles (community_id, participant_id, handle, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (community_id, participant_id) DO UPDATE
		SET handle = EXCLUDED.handle, linked_at = EXCLUDED.linked_at`,
		h.CommunityID, h.ParticipantID, h.Handle, h.LinkedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLinkHandle, err)
	}
	return nil
}

func (r *HandleRepository) GetHandle(ctx context.Context, communityID, participantID string) (string, error) {
	var handle string
	err := r.db.QueryRow(ctx, `SELECT handle FROM handles WHERE community_id = $1 AND participant_id = $2`,
		communityID, participantID).Scan(&handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrHandleNotLinked
		}
		return "", fmt.Errorf("%s: %w", ErrMsgFailedToGetHandle, err)
	}
	return handle, nil
}

func (r *HandleRepository) ListHandles(ctx context.Context, communityID string) ([]domain.Handle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT community_id, participant_id, handle, linked_at FROM handles
		WHERE community_id = $1 ORDER BY participant_id`, communityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListHandles, err)
	}
	defer rows.Close()

	var handles []domain.Handle
	for rows.Next() {
		var h domain.Handle
		if err := rows.Scan(&h.CommunityID, &h.ParticipantID, &h.Handle, &h.LinkedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListHandles, err)
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// ListCommunities returns every community with at least one linked handle
func (r *HandleRepository) ListCommunities(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT community_id FROM handles ORDER BY community_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListCommunities, err)
	}
	communities, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListCommunities, err)
	}
	return communities, nil
}

func (r *HandleRepository) SetMasterChannel(ctx context.Context, communityID, channelID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO community_settings (community_id, master_channel_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (community_id) DO UPDATE
		SET master_channel_id = EXCLUDED.master_channel_id, updated_at = NOW()`,
		communityID, channelID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetMasterChannel, err)
	}
	return nil
}

// GetSettings returns nil when the community has not configured anything
func (r *HandleRepository) GetSettings(ctx context.Context, communityID string) (*domain.CommunitySettings, error) {
	var s domain.CommunitySettings
	err := r.db.QueryRow(ctx, `
		SELECT community_id, master_channel_id, updated_at FROM community_settings
		WHERE community_id = $1`, communityID).Scan(&s.CommunityID, &s.MasterChannelID, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSettings, err)
	}
	return &s, nil
}

func (r *HandleRepository) ListSettings(ctx context.Context) ([]domain.CommunitySettings, error) {
	rows, err := r.db.Query(ctx, `
		SELECT community_id, master_channel_id, updated_at FROM community_settings
		ORDER BY community_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSettings, err)
	}
	defer rows.Close()

	var settings []domain.CommunitySettings
	for rows.Next() {
		var s domain.CommunitySettings
		if err := rows.Scan(&s.CommunityID, &s.MasterChannelID, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSettings, err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

var _ repository.Handles = (*HandleRepository)(nil)
