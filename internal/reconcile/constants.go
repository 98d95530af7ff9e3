package reconcile

import "time"

// Defaults
const (
	DefaultInterval     = 10 * time.Minute
	DefaultRecentCount  = 20
	DefaultHistoryCount = 100
	DefaultParallelism  = 4
	lockKeyPrefix       = "reconcile:"
)

// Log messages
const (
	LogMsgPassStarted          = "Reconciliation pass started"
	LogMsgPassCompleted        = "Reconciliation pass completed"
	LogMsgCommunityFailed      = "Reconciliation failed for community"
	LogMsgParticipantSkipped   = "Skipping participant this pass"
	LogMsgParticipantAwarded   = "Awarded submission points"
	LogMsgWatermarkRaced       = "Watermark moved concurrently, leaving for next pass"
	LogMsgFailedToListHandles  = "Failed to list handles"
	LogMsgFailedToPublishEvent = "Failed to publish reconcile event"
)

// Error context messages
const (
	ErrContextFailedToListCommunities = "failed to list communities"
	ErrContextFailedToListHandles     = "failed to list handles"
	ErrContextFailedToEnsureBalance   = "failed to ensure balance"
	ErrContextFailedToFetchRecent     = "failed to fetch recent submissions"
	ErrContextFailedToFetchHistory    = "failed to fetch submission history"
	ErrContextFailedToAdvance         = "failed to advance watermark"
	ErrContextFailedToLock            = "failed to lock participant"
)
