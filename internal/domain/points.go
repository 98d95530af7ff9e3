package domain

import "time"

// DefaultStartingPoints is the balance every participant starts a period with
const DefaultStartingPoints int64 = 1500

// Balance is a participant's standing points within one community
type Balance struct {
	CommunityID   string    `json:"community_id"`
	ParticipantID string    `json:"participant_id"`
	Total         int64     `json:"total"`
	Watermark     int64     `json:"watermark"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PointsDelta is a signed change to one balance
type PointsDelta struct {
	ParticipantID string `json:"participant_id"`
	Delta         int64  `json:"delta"`
}

// Standing is one leaderboard row
type Standing struct {
	Position      int    `json:"position"`
	ParticipantID string `json:"participant_id"`
	Total         int64  `json:"total"`
	Rank          string `json:"rank"`
}

// BuildStandings assigns positions and rank titles to balances already sorted by total
func BuildStandings(balances []Balance) []Standing {
	standings := make([]Standing, 0, len(balances))
	for i, b := range balances {
		standings = append(standings, Standing{
			Position:      i + 1,
			ParticipantID: b.ParticipantID,
			Total:         b.Total,
			Rank:          RankFor(b.Total).Title,
		})
	}
	return standings
}
