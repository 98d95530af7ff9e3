package worker

import "time"

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Duel Expiry Worker
// ============================================================================

// Log messages for duel expiry worker operations
const (
	LogMsgFailedToListPendingDuels = "Failed to list pending duels on startup"
	LogMsgSchedulingDuelExpiry     = "Scheduling duel expiry"
	LogMsgDuelExpired              = "Duel expired"
	LogMsgFailedToExpireDuel       = "Failed to expire duel, retrying"
	LogMsgInvalidDuelPayload       = "Ignoring duel event with unreadable payload"
)

// ============================================================================
// Log Messages - Calendar Workers
// ============================================================================

// Log messages for calendar worker operations
const (
	LogMsgCalendarStandby   = "Calendar job on standby"
	LogMsgCalendarApproach  = "Calendar job scheduled"
	LogMsgCalendarStarting  = "Calendar job starting"
	LogMsgCalendarCompleted = "Calendar job completed"
	LogMsgCalendarFailed    = "Calendar job failed"
	LogMsgCalendarCatchUp   = "Running missed calendar job"
)

// ============================================================================
// Scheduling
// ============================================================================

const (
	// Timers further out than standbyThreshold wake up standbyLead early and
	// reschedule, so a long sleep never overshoots the boundary.
	standbyThreshold = time.Hour
	standbyLead      = 45 * time.Minute

	// earlyTolerance is how early a timer may fire and still count as on time
	earlyTolerance = 10 * time.Second

	calendarRunTimeout = 5 * time.Minute
	expiryRunTimeout   = 30 * time.Second

	// A failed expiry is retried after expiryRetryBase, doubling up to
	// expiryRetryMax
	expiryRetryBase = 5 * time.Second
	expiryRetryMax  = 2 * time.Minute

	// MonthlyResetCatchUp is how long after a missed reset boundary a
	// restarted worker still runs it
	MonthlyResetCatchUp = 24 * time.Hour
)

// Worker names used in logs
const (
	workerNameDuelExpiry      = "duel expiry worker"
	workerNameMonthlyReset    = "monthly reset worker"
	workerNameWeeklyStandings = "weekly standings worker"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
