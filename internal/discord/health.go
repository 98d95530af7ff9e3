package discord

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthStatus represents the bot's health status
type HealthStatus struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	Connected        bool      `json:"connected"`
	EventsConnected  bool      `json:"events_connected"`
	CommandsReceived int64     `json:"commands_received"`
	LastCommandTime  time.Time `json:"last_command_time,omitempty"`
	APIReachable     bool      `json:"api_reachable"`
}

var (
	startTime       = time.Now()
	commandCounter  atomic.Int64
	lastCommandUnix atomic.Int64
)

// RecordCommand increments the command counter
func RecordCommand() {
	commandCounter.Add(1)
	lastCommandUnix.Store(time.Now().Unix())
}

func lastCommandTime() time.Time {
	unix := lastCommandUnix.Load()
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// HandleHealth reports whether the gateway session and the API are up. The
// event stream is informational; it reconnects on its own.
func (h *HTTPServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	connected := h.bot != nil && h.bot.Session != nil && h.bot.Session.DataReady

	apiReachable := false
	if h.bot != nil && h.bot.Client != nil {
		apiReachable = h.bot.Client.Ping() == nil
	}

	eventsConnected := h.events != nil && h.events.IsConnected()

	health := HealthStatus{
		Status:           "healthy",
		Uptime:           time.Since(startTime).Round(time.Second).String(),
		Connected:        connected,
		EventsConnected:  eventsConnected,
		CommandsReceived: commandCounter.Load(),
		LastCommandTime:  lastCommandTime(),
		APIReachable:     apiReachable,
	}

	w.Header().Set("Content-Type", "application/json")
	if !connected || !apiReachable {
		health.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	// Headers are already sent; nothing useful to do with an encode error
	_ = json.NewEncoder(w).Encode(health)
}
