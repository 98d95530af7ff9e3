package discord

import (
	"time"

	"github.com/osse101/DuelBot_Go/internal/sse"
)

// SSE client configuration
const (
	// sseInitialBackoff is the initial backoff duration for reconnection
	sseInitialBackoff = 1 * time.Second

	// sseMaxBackoff is the maximum backoff duration for reconnection
	sseMaxBackoff = 30 * time.Second

	// sseBackoffMultiplier is the multiplier for exponential backoff
	sseBackoffMultiplier = 2.0

	// sseBufferSize is the buffer size for reading SSE events
	sseBufferSize = 64 * 1024 // 64KB
)

// SSE event types the bot subscribes to
const (
	SSEEventTypeDuelExpired     = sse.EventTypeDuelExpired
	SSEEventTypeDuelCompleted   = sse.EventTypeDuelCompleted
	SSEEventTypePointsReset     = sse.EventTypePointsReset
	SSEEventTypeWeeklyStandings = sse.EventTypeWeeklyStandings
)

// NotificationEventTypes is the filter the bot sends when connecting
var NotificationEventTypes = []string{
	SSEEventTypeDuelExpired,
	SSEEventTypeDuelCompleted,
	SSEEventTypePointsReset,
	SSEEventTypeWeeklyStandings,
}

// SSE log messages
const (
	sseLogMsgClientConnected   = "SSE client connected"
	sseLogMsgClientStopped     = "SSE client stopped"
	sseLogMsgConnectionFailed  = "SSE connection failed"
	sseLogMsgParseError        = "Failed to parse SSE event"
	sseLogMsgHandlerError      = "SSE event handler error"
	sseLogMsgEventReceived     = "SSE event received"
	sseLogMsgNotificationSent  = "Discord notification sent"
	sseLogMsgNotificationError = "Failed to send Discord notification"
)
