package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files (read/write for owner, read for group/others)
	LogFilePermission = 0666
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of log files to retain after cleanup
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgStartingDuelBot     = "Starting DuelBot"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	// EventDefaultMaxRetries is the default number of retry attempts for failed event publishing
	EventDefaultMaxRetries = 5

	// EventDefaultRetryDelay is the default base delay between retry attempts (exponential backoff)
	EventDefaultRetryDelay = 2 * time.Second

	// EventDefaultDeadLetterPath is the default file path for dead-letter event logging
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// =============================================================================
// Dependency Wiring
// =============================================================================

const (
	// RatingCacheSize bounds how many handles keep a cached judge rating
	RatingCacheSize = 512

	// LockRetryInterval is how often a Redis lock waiter polls
	LockRetryInterval = 100 * time.Millisecond

	// RedisPoolSize is the connection pool size for the lock store
	RedisPoolSize = 10
)

const (
	LogMsgRedisEnabled        = "Redis locking enabled"
	LogMsgRedisDisabled       = "Redis not configured, using in-process locks"
	LogMsgArchiveEnabled      = "Standings archive enabled"
	LogMsgArchiveDisabled     = "Archive bucket not configured, standings will not be archived"
	ErrMsgFailedConnectRedis  = "failed to connect to redis"
	ErrMsgFailedCreateArchive = "failed to create standings archiver"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

// Log messages for event handler registration
const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgSSESubscriberRegistered    = "SSE subscriber registered"
	LogMsgExpiryWorkerSubscribed     = "Duel expiry worker subscribed"
	ErrMsgFailedRegisterMetrics      = "failed to register metrics collector"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgRedisCloseFailed           = "Redis client close failed"

	// Worker names for shutdown logging
	WorkerNameDuelExpiry      = "duel expiry"
	WorkerNameMonthlyReset    = "monthly reset"
	WorkerNameWeeklyStandings = "weekly standings"
)

// Shutdown log message format (worker name will be prepended)
const (
	LogMsgWorkerShutdownFailed = " worker shutdown failed"
)
