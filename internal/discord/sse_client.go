package discord

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/DuelBot_Go/internal/sse"
)

var errStreamClosed = errors.New("event stream closed by server")

// SSEEvent is an event from the API's /events stream. Payload stays raw so
// each handler decodes its own shape.
type SSEEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// SSEEventHandler reacts to one event type
type SSEEventHandler func(event SSEEvent) error

// SSEClient holds a long-lived subscription to the API and reconnects with
// exponential backoff until stopped.
type SSEClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client

	mu       sync.RWMutex
	handlers map[string][]SSEEventHandler

	connected   atomic.Bool
	lastEventID atomic.Value // string

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSSEClient subscribes to eventTypes on the API at baseURL. An empty list
// subscribes to everything.
func NewSSEClient(baseURL, apiKey string, eventTypes []string) *SSEClient {
	endpoint := baseURL + "/api/v1/events"
	if len(eventTypes) > 0 {
		endpoint += "?" + url.Values{"types": {strings.Join(eventTypes, ",")}}.Encode()
	}

	c := &SSEClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		// Streams stay open indefinitely
		httpClient: &http.Client{},
		handlers:   make(map[string][]SSEEventHandler),
		done:       make(chan struct{}),
	}
	c.lastEventID.Store("")
	return c
}

// OnEvent adds a handler for eventType
func (c *SSEClient) OnEvent(eventType string, handler SSEEventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = append(c.handlers[eventType], handler)
}

// Start connects in the background
func (c *SSEClient) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop waits for the connection loop to exit. Safe to call more than once.
func (c *SSEClient) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}

func (c *SSEClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *SSEClient) stopping(ctx context.Context) bool {
	select {
	case <-c.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *SSEClient) run(ctx context.Context) {
	defer c.wg.Done()
	defer slog.Info(sseLogMsgClientStopped)

	delay := sseInitialBackoff
	failures := 0

	for !c.stopping(ctx) {
		err := c.stream(ctx)
		c.connected.Store(false)
		if c.stopping(ctx) {
			return
		}

		if err == nil {
			delay, failures = sseInitialBackoff, 0
			continue
		}

		failures++
		slog.Warn(sseLogMsgConnectionFailed, "error", err, "backoff", delay, "consecutive_failures", failures)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-c.done:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
		delay = min(time.Duration(float64(delay)*sseBackoffMultiplier), sseMaxBackoff)
	}
}

// stream holds one connection open. A server-side close counts as an error
// so the caller backs off before reconnecting.
func (c *SSEClient) stream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("build events request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if id := c.lastEventID.Load().(string); id != "" {
		req.Header.Set("Last-Event-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("events returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	c.connected.Store(true)
	slog.Info(sseLogMsgClientConnected, "url", c.endpoint)

	return c.readEvents(ctx, resp.Body)
}

// sseFrame accumulates the fields of one event between blank lines
type sseFrame struct {
	id, event string
	data      strings.Builder
}

func (f *sseFrame) reset() {
	f.id, f.event = "", ""
	f.data.Reset()
}

// field applies one "name: value" line. Lines starting with a colon are
// comments and unknown names are ignored.
func (f *sseFrame) field(line string) {
	name, value, ok := strings.Cut(line, ":")
	if !ok || name == "" {
		return
	}
	value = strings.TrimPrefix(value, " ")

	switch name {
	case "id":
		f.id = value
	case "event":
		f.event = value
	case "data":
		if f.data.Len() > 0 {
			f.data.WriteByte('\n')
		}
		f.data.WriteString(value)
	}
}

func (c *SSEClient) readEvents(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, sseBufferSize), sseBufferSize)

	var frame sseFrame
	for scanner.Scan() {
		if c.stopping(ctx) {
			return ctx.Err()
		}

		line := scanner.Text()
		if line != "" {
			frame.field(line)
			continue
		}
		if frame.data.Len() > 0 {
			c.dispatch(frame.id, frame.event, frame.data.String())
		}
		frame.reset()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return errStreamClosed
}

func (c *SSEClient) dispatch(id, eventType, data string) {
	switch eventType {
	case "", sse.EventTypeKeepalive, sse.EventTypeConnected:
		return
	}

	var event SSEEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		slog.Warn(sseLogMsgParseError, "error", err, "data", data)
		return
	}
	event.Type = eventType
	if id != "" {
		event.ID = id
		c.lastEventID.Store(id)
	}
	slog.Debug(sseLogMsgEventReceived, "event_type", event.Type, "event_id", event.ID)

	c.mu.RLock()
	handlers := c.handlers[event.Type]
	c.mu.RUnlock()

	for _, h := range handlers {
		if err := h(event); err != nil {
			slog.Error(sseLogMsgHandlerError, "event_type", event.Type, "error", err)
		}
	}
}
