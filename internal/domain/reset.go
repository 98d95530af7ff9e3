package domain

import "time"

// ResetPeriodLayout formats a calendar month as a reset period key, e.g. "2026-10"
const ResetPeriodLayout = "2006-01"

// ResetPeriod returns the period key containing t
func ResetPeriod(t time.Time) string {
	return t.UTC().Format(ResetPeriodLayout)
}

// ResetResult reports what a monthly reset did to one community
type ResetResult struct {
	CommunityID     string     `json:"community_id"`
	Period          string     `json:"period"`
	Skipped         bool       `json:"skipped"`
	RecordsAffected int64      `json:"records_affected"`
	StartingValue   int64      `json:"starting_value"`
	Standings       []Standing `json:"standings,omitempty"`
	ResetAt         time.Time  `json:"reset_at"`
}
