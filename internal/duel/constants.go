package duel

import "time"

// Defaults
const (
	DefaultExpiryWindow    = 5 * time.Minute
	DefaultHistoryPageSize = 5
	FetchAllSubmissions    = 0
	lockKeyPrefix          = "duel:"
)

// Error context messages
const (
	ErrContextFailedToGetOpenDuel    = "failed to get open duel"
	ErrContextFailedToGetHandle      = "failed to get handle"
	ErrContextFailedToGetRating      = "failed to get rating"
	ErrContextFailedToGetHistory     = "failed to get submission history"
	ErrContextFailedToGetCatalog     = "failed to get problem catalog"
	ErrContextFailedToSelectProblems = "failed to select problems"
	ErrContextFailedToCreateDuel     = "failed to create duel"
	ErrContextFailedToLockDuel       = "failed to lock duel"
	ErrContextFailedToTransition     = "failed to transition duel"
	ErrContextFailedToMarkComplete   = "failed to mark side complete"
	ErrContextFailedToJudge          = "failed to judge duel"
	ErrContextFailedToBeginTx        = "failed to begin transaction"
	ErrContextFailedToSettle         = "failed to settle duel"
	ErrContextFailedToCommit         = "failed to commit settlement"
	ErrContextFailedToListHistory    = "failed to list duel history"
	ErrContextFailedToListAwaiting   = "failed to list duels awaiting judgement"
)

// Log messages
const (
	LogMsgChallengeIssued     = "Duel challenge issued"
	LogMsgChallengeAccepted   = "Duel accepted"
	LogMsgSideCompleted       = "Duel side marked complete"
	LogMsgDuelSettled         = "Duel judged and settled"
	LogMsgDuelCancelled       = "Pending duel cancelled"
	LogMsgDuelExpired         = "Pending duel expired"
	LogMsgExpiryNoop          = "Expiry found duel no longer pending"
	LogMsgJudgeDeferred       = "Judge unavailable, duel left active for retry"
	LogMsgPublishFailed       = "Failed to publish duel event"
	LogMsgAwaitingJudgeFailed = "Failed to settle duel awaiting judgement"
	LogMsgAwaitingSettled     = "Settled duels left awaiting judgement"
)
