package config

import "time"

// EnvConfigPath names the optional TOML tuning overlay
const EnvConfigPath = "DUELBOT_CONFIG"

// Defaults
const (
	DefaultDuelExpiry           = 5 * time.Minute
	DefaultReconcileInterval    = 10 * time.Minute
	DefaultReconcileParallelism = 4
	DefaultStartingPoints       = 1500
	DefaultCatalogTTL           = 6 * time.Hour
	DefaultRatingTTL            = 15 * time.Minute
	DefaultResetDay             = 1
	DefaultResetHour            = 10
	DefaultStandingsWeekday     = time.Friday
	DefaultStandingsHour        = 10
	DefaultWorkerCount          = 2
	DefaultWorkerQueueSize      = 16
	DefaultLockTTL              = 30 * time.Second

	DefaultDBMaxConns    = 10
	DefaultDBMaxConnIdle = 5 * time.Minute
	DefaultDBMaxConnLife = time.Hour

	DefaultJudgeBaseURL = "https://codeforces.com/api"
	DefaultJudgeTimeout = 10 * time.Second

	DefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)
