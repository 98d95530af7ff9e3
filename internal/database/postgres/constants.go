package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Advisory lock hashing
const (
	// HashMaskPositiveInt64 clears the sign bit so lock keys stay positive
	HashMaskPositiveInt64 = 0x7FFFFFFFFFFFFFFF

	// participantLockPrefix namespaces advisory locks taken on participants
	participantLockPrefix = "duel-participant:"
)

// History paging
const (
	// MaxHistoryPageSize bounds a single keyset page
	MaxHistoryPageSize = 100
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
	ErrMsgFailedToAcquireLock       = "failed to acquire advisory lock"
)

// Error Messages - Duel Operations
const (
	ErrMsgFailedToCreateDuel         = "failed to create duel"
	ErrMsgFailedToInsertProblemSet   = "failed to insert duel problem set"
	ErrMsgFailedToCheckOpenDuels     = "failed to check open duels"
	ErrMsgFailedToGetDuel            = "failed to get duel"
	ErrMsgFailedToGetOpenDuel        = "failed to get open duel"
	ErrMsgFailedToListPendingDuels   = "failed to list pending duels"
	ErrMsgFailedToListAwaitingDuels  = "failed to list duels awaiting judgement"
	ErrMsgFailedToTransitionDuel     = "failed to transition duel"
	ErrMsgFailedToMarkSideComplete   = "failed to mark side complete"
	ErrMsgFailedToCompleteDuel       = "failed to complete duel"
	ErrMsgFailedToListFinishedDuels  = "failed to list finished duels"
	ErrMsgFailedToScanDuel           = "failed to scan duel"
	ErrMsgUnknownSide                = "unknown duel side"
	ErrMsgTransitionTargetNotAllowed = "transition target not allowed"
)

// Error Messages - Points Operations
const (
	ErrMsgFailedToGetBalance        = "failed to get balance"
	ErrMsgFailedToEnsureBalance     = "failed to ensure balance"
	ErrMsgFailedToAdvanceWatermark  = "failed to advance watermark"
	ErrMsgFailedToAddPoints         = "failed to add points"
	ErrMsgFailedToListStandings     = "failed to list standings"
	ErrMsgFailedToClaimResetPeriod  = "failed to claim reset period"
	ErrMsgFailedToResetBalances     = "failed to reset balances"
	ErrMsgFailedToScanBalance       = "failed to scan balance"
)

// Error Messages - Handle Operations
const (
	ErrMsgFailedToLinkHandle       = "failed to link handle"
	ErrMsgFailedToGetHandle        = "failed to get handle"
	ErrMsgFailedToListHandles      = "failed to list handles"
	ErrMsgFailedToListCommunities  = "failed to list communities"
	ErrMsgFailedToSetMasterChannel = "failed to set master channel"
	ErrMsgFailedToGetSettings      = "failed to get community settings"
)
