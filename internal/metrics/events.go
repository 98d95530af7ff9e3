package metrics

import (
	"context"

	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.DuelChallenged,
		event.DuelAccepted,
		event.DuelWithdrawn,
		event.DuelDeclined,
		event.DuelExpired,
		event.DuelCompleted,
		event.PointsReset,
		event.ReconcileCompleted,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.DuelChallenged, event.DuelAccepted, event.DuelWithdrawn, event.DuelDeclined, event.DuelExpired:
		DuelTransitions.WithLabelValues(string(evt.Type)).Inc()

	case event.DuelCompleted:
		DuelTransitions.WithLabelValues(string(evt.Type)).Inc()
		payload, err := event.DecodePayload[event.DuelCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUnreadable, "type", evt.Type, "error", err)
			return nil
		}
		DuelOutcomes.WithLabelValues(string(payload.Outcome.Winner)).Inc()

	case event.PointsReset:
		MonthlyResets.Inc()

	case event.ReconcileCompleted:
		payload, err := event.DecodePayload[event.ReconcileCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUnreadable, "type", evt.Type, "error", err)
			return nil
		}
		ReconcilePassDuration.Observe(float64(payload.DurationMs) / 1000)
		PointsAwarded.Add(float64(max(payload.Awarded, 0)))
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
