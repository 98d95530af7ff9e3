package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Event types
const (
	DuelChallenged     Type = domain.EventTypeDuelChallenged
	DuelAccepted       Type = domain.EventTypeDuelAccepted
	DuelWithdrawn      Type = domain.EventTypeDuelWithdrawn
	DuelDeclined       Type = domain.EventTypeDuelDeclined
	DuelExpired        Type = domain.EventTypeDuelExpired
	DuelCompleted      Type = domain.EventTypeDuelCompleted
	PointsReset        Type = domain.EventTypePointsReset
	WeeklyStandings    Type = domain.EventTypeWeeklyStandings
	ReconcileCompleted Type = domain.EventTypeReconcileCompleted
)

// DuelPayloadV1 describes a duel at the moment of a lifecycle transition
type DuelPayloadV1 struct {
	DuelID       string            `json:"duel_id"`
	CommunityID  string            `json:"community_id"`
	ChallengerID string            `json:"challenger_id"`
	ChallengeeID string            `json:"challengee_id"`
	Status       domain.DuelStatus `json:"status"`
	Rating       int               `json:"rating"`
	Problems     []string          `json:"problems,omitempty"`
	IssuedAt     time.Time         `json:"issued_at"`
	Timestamp    int64             `json:"timestamp"`
}

// DuelCompletedPayloadV1 carries a judged duel and the balance changes it settled
type DuelCompletedPayloadV1 struct {
	Duel    DuelPayloadV1        `json:"duel"`
	Outcome domain.Outcome       `json:"outcome"`
	Deltas  []domain.PointsDelta `json:"deltas"`
}

// PointsResetPayloadV1 is the typed payload for monthly reset events
type PointsResetPayloadV1 struct {
	CommunityID     string            `json:"community_id"`
	Period          string            `json:"period"`
	StartingValue   int64             `json:"starting_value"`
	RecordsAffected int64             `json:"records_affected"`
	Standings       []domain.Standing `json:"standings,omitempty"`
	Timestamp       int64             `json:"timestamp"`
}

// StandingsPayloadV1 is the typed payload for periodic leaderboard snapshots
type StandingsPayloadV1 struct {
	CommunityID string            `json:"community_id"`
	Standings   []domain.Standing `json:"standings"`
	Timestamp   int64             `json:"timestamp"`
}

// ReconcileCompletedPayloadV1 summarizes one reconciliation pass
type ReconcileCompletedPayloadV1 struct {
	Communities  int   `json:"communities"`
	Participants int   `json:"participants"`
	Skipped      int   `json:"skipped"`
	Awarded      int64 `json:"awarded"`
	DurationMs   int64 `json:"duration_ms"`
	Timestamp    int64 `json:"timestamp"`
}

func newDuelPayload(d *domain.Duel) DuelPayloadV1 {
	return DuelPayloadV1{
		DuelID:       d.ID.String(),
		CommunityID:  d.CommunityID,
		ChallengerID: d.ChallengerID,
		ChallengeeID: d.ChallengeeID,
		Status:       d.Status,
		Rating:       d.Rating,
		Problems:     d.Problems,
		IssuedAt:     d.IssuedAt,
		Timestamp:    time.Now().Unix(),
	}
}

// NewDuelEvent creates a lifecycle event for d
func NewDuelEvent(eventType Type, d *domain.Duel) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: newDuelPayload(d),
		Metadata: map[string]interface{}{
			MetadataCommunityID: d.CommunityID,
		},
	}
}

// NewDuelCompletedEvent creates a completion event with its settlement
func NewDuelCompletedEvent(d *domain.Duel, outcome domain.Outcome, deltas []domain.PointsDelta) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    DuelCompleted,
		Payload: DuelCompletedPayloadV1{
			Duel:    newDuelPayload(d),
			Outcome: outcome,
			Deltas:  deltas,
		},
		Metadata: map[string]interface{}{
			MetadataCommunityID: d.CommunityID,
		},
	}
}

// NewPointsResetEvent creates a monthly reset event
func NewPointsResetEvent(result *domain.ResetResult) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PointsReset,
		Payload: PointsResetPayloadV1{
			CommunityID:     result.CommunityID,
			Period:          result.Period,
			StartingValue:   result.StartingValue,
			RecordsAffected: result.RecordsAffected,
			Standings:       result.Standings,
			Timestamp:       result.ResetAt.Unix(),
		},
		Metadata: map[string]interface{}{
			MetadataCommunityID: result.CommunityID,
		},
	}
}

// NewWeeklyStandingsEvent creates a weekly leaderboard event
func NewWeeklyStandingsEvent(communityID string, standings []domain.Standing) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    WeeklyStandings,
		Payload: StandingsPayloadV1{
			CommunityID: communityID,
			Standings:   standings,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: map[string]interface{}{
			MetadataCommunityID: communityID,
		},
	}
}

// NewReconcileCompletedEvent creates a pass summary event
func NewReconcileCompletedEvent(summary ReconcileCompletedPayloadV1) Event {
	summary.Timestamp = time.Now().Unix()
	return Event{
		Version: EventSchemaVersion,
		Type:    ReconcileCompleted,
		Payload: summary,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every subscriber synchronously and joins their errors
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
