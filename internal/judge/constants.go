package judge

import "time"

// Client defaults
const (
	DefaultBaseURL    = "https://codeforces.com/api"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// Cache defaults
const (
	DefaultCatalogTTL  = 6 * time.Hour
	DefaultRatingTTL   = 15 * time.Minute
	DefaultRatingCache = 512
)

// Response status values reported by the judge
const (
	statusOK     = "OK"
	statusFailed = "FAILED"
)

// API methods
const (
	methodUserStatus = "user.status"
	methodUserInfo   = "user.info"
	methodProblems   = "problemset.problems"
)

// Error messages
const (
	ErrMsgRequestFailed   = "judge request failed"
	ErrMsgDecodeFailed    = "failed to decode judge response"
	ErrMsgRejected        = "judge rejected request"
	ErrMsgUnknownHandle   = "unknown handle"
	ErrMsgMaxRetries      = "max retries exceeded"
	ErrMsgBuildRequest    = "failed to create request"
	ErrMsgUnexpectedState = "unexpected response status"
)
