package sse

import "github.com/osse101/DuelBot_Go/internal/domain"

// Notification fields shared by every payload the bot posts
type Notification struct {
	CommunityID string `json:"community_id"`
	ChannelID   string `json:"channel_id"`
}

// DuelExpiredPayload announces a challenge nobody answered
type DuelExpiredPayload struct {
	Notification
	DuelID       string `json:"duel_id"`
	ChallengerID string `json:"challenger_id"`
	ChallengeeID string `json:"challengee_id"`
}

// DuelCompletedPayload announces a finished duel and its settlement
type DuelCompletedPayload struct {
	Notification
	DuelID       string               `json:"duel_id"`
	ChallengerID string               `json:"challenger_id"`
	ChallengeeID string               `json:"challengee_id"`
	Outcome      domain.Outcome       `json:"outcome"`
	Deltas       []domain.PointsDelta `json:"deltas"`
}

// PointsResetPayload announces a monthly reset with the final standings
type PointsResetPayload struct {
	Notification
	Period        string            `json:"period"`
	StartingValue int64             `json:"starting_value"`
	Standings     []domain.Standing `json:"standings"`
}

// StandingsPayload carries the weekly leaderboard
type StandingsPayload struct {
	Notification
	Standings []domain.Standing `json:"standings"`
}
