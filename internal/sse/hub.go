package sse

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/DuelBot_Go/internal/logger"
)

// Event is one frame on the /events stream
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload"`
}

// Client is a connected stream. EventChannel is closed when the client is
// unregistered or the hub stops.
type Client struct {
	ID           string
	EventChannel chan Event

	types   map[string]struct{}
	dropped atomic.Int64
}

// Wants reports whether the client subscribed to eventType. A client that
// named no types receives everything.
func (c *Client) Wants(eventType string) bool {
	if c.types == nil {
		return true
	}
	_, ok := c.types[eventType]
	return ok
}

// Dropped is the number of events skipped because the client fell behind
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// Hub fans events out to every connected client. All membership changes go
// through the run loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	events chan Event
	joins  chan *Client
	leaves chan string

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		events:  make(chan Event, BroadcastBufferSize),
		joins:   make(chan *Client, ClientChannelBuffer),
		leaves:  make(chan string, ClientChannelBuffer),
		done:    make(chan struct{}),
	}
}

// Start runs the fan-out loop until Stop
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.loop()
}

// Stop ends the loop and closes every client channel. Safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		defer h.mu.Unlock()
		for id, c := range h.clients {
			close(c.EventChannel)
			delete(h.clients, id)
		}
	})
}

func (h *Hub) loop() {
	defer h.wg.Done()

	for {
		select {
		case c := <-h.joins:
			h.mu.Lock()
			h.clients[c.ID] = c
			h.mu.Unlock()

		case id := <-h.leaves:
			h.remove(id)

		case e := <-h.events:
			h.deliver(e)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.EventChannel)
		delete(h.clients, id)
	}
}

// deliver never blocks: a client whose buffer is full misses the event
func (h *Hub) deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.Wants(e.Type) {
			continue
		}
		select {
		case c.EventChannel <- e:
		default:
			n := c.dropped.Add(1)
			logger.Warn(LogMsgClientLagging, "client_id", c.ID, "type", e.Type, "dropped", n)
		}
	}
}

// Register connects a client interested in eventTypes, or in everything when
// eventTypes is empty. After Stop the returned client is already closed.
func (h *Hub) Register(eventTypes []string) *Client {
	c := &Client{
		ID:           uuid.NewString(),
		EventChannel: make(chan Event, ClientEventBuffer),
	}
	if len(eventTypes) > 0 {
		c.types = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			c.types[t] = struct{}{}
		}
	}

	select {
	case h.joins <- c:
	case <-h.done:
		close(c.EventChannel)
	}
	return c
}

// Unregister disconnects a client
func (h *Hub) Unregister(clientID string) {
	select {
	case h.leaves <- clientID:
	case <-h.done:
	}
}

// Broadcast queues an event for delivery. It drops the event when the queue
// is full.
func (h *Hub) Broadcast(eventType string, payload any) {
	e := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}

	select {
	case h.events <- e:
	default:
		logger.Warn(LogMsgEventDropped, "type", eventType)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatSSEMessage renders e as an id/event/data frame
func FormatSSEMessage(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(e.ID) + len(e.Type) + 24)
	buf.WriteString("id: ")
	buf.WriteString(e.ID)
	buf.WriteString("\nevent: ")
	buf.WriteString(e.Type)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}
