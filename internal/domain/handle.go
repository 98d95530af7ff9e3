package domain

import "time"

// Handle links a community member to their judge account
type Handle struct {
	CommunityID   string    `json:"community_id"`
	ParticipantID string    `json:"participant_id"`
	Handle        string    `json:"handle"`
	LinkedAt      time.Time `json:"linked_at"`
}

// CommunitySettings holds per-community notification routing
type CommunitySettings struct {
	CommunityID     string    `json:"community_id"`
	MasterChannelID string    `json:"master_channel_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}
