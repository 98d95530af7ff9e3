package domain

// Event type constants used for event bus subscriptions, SSE filtering and
// metrics. Event types follow the pattern: <entity>.<action>
const (
	// EventTypeDuelChallenged is published when a challenge is issued
	EventTypeDuelChallenged = "duel.challenged"

	// EventTypeDuelAccepted is published when the challengee accepts
	EventTypeDuelAccepted = "duel.accepted"

	// EventTypeDuelWithdrawn is published when the challenger withdraws a pending challenge
	EventTypeDuelWithdrawn = "duel.withdrawn"

	// EventTypeDuelDeclined is published when the challengee declines
	EventTypeDuelDeclined = "duel.declined"

	// EventTypeDuelExpired is published when a pending challenge times out
	EventTypeDuelExpired = "duel.expired"

	// EventTypeDuelCompleted is published after judging and settlement commit
	EventTypeDuelCompleted = "duel.completed"

	// EventTypePointsReset is published after a community's monthly reset
	EventTypePointsReset = "points.reset"

	// EventTypeWeeklyStandings carries the weekly leaderboard snapshot
	EventTypeWeeklyStandings = "standings.weekly"

	// EventTypeReconcileCompleted is published after each reconciliation pass
	EventTypeReconcileCompleted = "reconcile.completed"
)
