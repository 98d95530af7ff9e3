package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/osse101/DuelBot_Go/internal/validation"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	LogDir      string
	APIKey      string // API key for authentication

	// TrustedProxies lists proxy IPs whose X-Forwarded-For is believed
	TrustedProxies []string

	DBUser        string
	DBPassword    string
	DBHost        string
	DBPort        string
	DBName        string
	DBMaxConns    int
	DBMaxConnIdle time.Duration
	DBMaxConnLife time.Duration

	// Redis is optional; an empty address keeps locking in-process
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JudgeBaseURL string
	JudgeTimeout time.Duration

	// Archive is optional; an empty bucket disables standings uploads
	ArchiveBucket    string
	ArchiveEndpoint  string
	ArchiveRegion    string
	ArchiveAccessKey string
	ArchiveSecretKey string
	ArchivePathStyle bool

	DeadLetterPath string

	Tuning Tuning
}

// Tuning holds the game and scheduling knobs. Defaults come from DefaultTuning,
// then the optional TOML overlay named by DUELBOT_CONFIG replaces any key it sets.
type Tuning struct {
	DuelExpiry           Duration `toml:"duel_expiry"`
	ReconcileInterval    Duration `toml:"reconcile_interval"`
	ReconcileParallelism int      `toml:"reconcile_parallelism"`
	StartingPoints       int64    `toml:"starting_points"`
	CatalogTTL           Duration `toml:"catalog_ttl"`
	RatingTTL            Duration `toml:"rating_ttl"`
	ResetDay             int      `toml:"reset_day"`
	ResetHour            int      `toml:"reset_hour"`
	StandingsWeekday     Weekday  `toml:"standings_weekday"`
	StandingsHour        int      `toml:"standings_hour"`
	WorkerCount          int      `toml:"worker_count"`
	WorkerQueueSize      int      `toml:"worker_queue_size"`
	LockTTL              Duration `toml:"lock_ttl"`
}

// DefaultTuning returns the production defaults
func DefaultTuning() Tuning {
	return Tuning{
		DuelExpiry:           Duration(DefaultDuelExpiry),
		ReconcileInterval:    Duration(DefaultReconcileInterval),
		ReconcileParallelism: DefaultReconcileParallelism,
		StartingPoints:       DefaultStartingPoints,
		CatalogTTL:           Duration(DefaultCatalogTTL),
		RatingTTL:            Duration(DefaultRatingTTL),
		ResetDay:             DefaultResetDay,
		ResetHour:            DefaultResetHour,
		StandingsWeekday:     Weekday(DefaultStandingsWeekday),
		StandingsHour:        DefaultStandingsHour,
		WorkerCount:          DefaultWorkerCount,
		WorkerQueueSize:      DefaultWorkerQueueSize,
		LockTTL:              Duration(DefaultLockTTL),
	}
}

// Duration decodes TOML strings such as "5m" or "1h30m"
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Weekday decodes TOML strings such as "friday"
type Weekday time.Weekday

func (w *Weekday) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			*w = Weekday(d)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", text)
}

func (w Weekday) Std() time.Weekday { return time.Weekday(w) }

// Load loads the configuration from .env, the environment and the optional TOML overlay
func Load() (*Config, error) {
	// A missing .env is fine; real env vars may be set
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Environment: getEnv("ENVIRONMENT", "dev"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		APIKey:      getEnv("API_KEY", ""),

		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBName:        getEnv("DB_NAME", "duelbot"),
		DBMaxConns:    getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdle: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdle),
		DBMaxConnLife: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLife),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JudgeBaseURL: getEnv("JUDGE_BASE_URL", DefaultJudgeBaseURL),
		JudgeTimeout: getEnvAsDuration("JUDGE_TIMEOUT", DefaultJudgeTimeout),

		ArchiveBucket:    getEnv("ARCHIVE_BUCKET", ""),
		ArchiveEndpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
		ArchiveRegion:    getEnv("ARCHIVE_REGION", ""),
		ArchiveAccessKey: getEnv("ARCHIVE_ACCESS_KEY", ""),
		ArchiveSecretKey: getEnv("ARCHIVE_SECRET_KEY", ""),
		ArchivePathStyle: getEnvAsBool("ARCHIVE_PATH_STYLE", false),

		DeadLetterPath: getEnv("EVENT_DEADLETTER_PATH", DefaultDeadLetterPath),

		Tuning: DefaultTuning(),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.loadOverlay(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

//go:embed overlay.schema.json
var overlaySchema []byte

// loadOverlay decodes the TOML file at path on top of the current tuning.
// The file is checked against overlay.schema.json so that a typo or an out of
// range value names the offending key.
func (c *Config) loadOverlay(path string) error {
	md, err := toml.DecodeFile(path, &c.Tuning)
	if err != nil {
		return fmt.Errorf("failed to read config overlay %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in config overlay %s: %s", path, strings.Join(keys, ", "))
	}

	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("failed to read config overlay %s: %w", path, err)
	}
	schema, err := validation.NewSchemaValidator("overlay.schema.json", overlaySchema)
	if err != nil {
		return err
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("invalid config overlay %s: %w", path, err)
	}
	return nil
}

// Validate rejects tunings that would stall a worker or break a schedule
func (t Tuning) Validate() error {
	var errs []error
	if t.DuelExpiry.Std() <= 0 {
		errs = append(errs, errors.New("duel_expiry must be positive"))
	}
	if t.ReconcileInterval.Std() <= 0 {
		errs = append(errs, errors.New("reconcile_interval must be positive"))
	}
	if t.ResetDay < 1 || t.ResetDay > 28 {
		errs = append(errs, fmt.Errorf("reset_day must be between 1 and 28, got %d", t.ResetDay))
	}
	if t.ResetHour < 0 || t.ResetHour > 23 {
		errs = append(errs, fmt.Errorf("reset_hour must be between 0 and 23, got %d", t.ResetHour))
	}
	if t.StandingsHour < 0 || t.StandingsHour > 23 {
		errs = append(errs, fmt.Errorf("standings_hour must be between 0 and 23, got %d", t.StandingsHour))
	}
	if t.WorkerCount <= 0 || t.WorkerQueueSize <= 0 {
		errs = append(errs, errors.New("worker_count and worker_queue_size must be positive"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsList splits a comma separated variable, dropping empty entries
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
