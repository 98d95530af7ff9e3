package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/metrics"
	"github.com/osse101/DuelBot_Go/internal/sse"
	"github.com/osse101/DuelBot_Go/internal/worker"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus     event.Bus
	SSEHub       *sse.Hub
	Settings     sse.SettingsLookup
	ExpiryWorker *worker.DuelExpiryWorker
}

// RegisterEventHandlers sets up all event subscribers:
// - Duel expiry worker (arms and disarms challenge timers)
// - Metrics collector (for event-based metrics)
// - SSE subscriber (forwards notifications to the Discord bot)
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	deps.ExpiryWorker.Subscribe(deps.EventBus)
	slog.Info(LogMsgExpiryWorkerSubscribed)

	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	sse.NewSubscriber(deps.SSEHub, deps.EventBus, deps.Settings).Subscribe()
	slog.Info(LogMsgSSESubscriberRegistered)

	return nil
}
