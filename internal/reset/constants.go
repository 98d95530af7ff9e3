package reset

// Log messages
const (
	LogMsgResetStarting        = "Monthly reset starting"
	LogMsgResetCompleted       = "Monthly reset completed"
	LogMsgResetSkipped         = "Period already reset, skipping"
	LogMsgResetFailed          = "Monthly reset failed for community"
	LogMsgArchiveFailed        = "Failed to archive standings snapshot"
	LogMsgFailedToPublishEvent = "Failed to publish reset event"
)

// Error context messages
const (
	ErrContextFailedToBeginTx         = "failed to begin reset transaction"
	ErrContextFailedToClaimPeriod     = "failed to claim reset period"
	ErrContextFailedToSnapshot        = "failed to snapshot standings"
	ErrContextFailedToResetBalances   = "failed to reset balances"
	ErrContextFailedToCommit          = "failed to commit reset"
	ErrContextFailedToListCommunities = "failed to list communities"
)
