package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/scheduler"
	"github.com/osse101/DuelBot_Go/internal/server"
	"github.com/osse101/DuelBot_Go/internal/sse"
	"github.com/osse101/DuelBot_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
// Nil fields are skipped.
type ShutdownComponents struct {
	Server                *server.Server
	Scheduler             *scheduler.Scheduler
	WorkerPool            *worker.Pool
	DuelExpiryWorker      *worker.DuelExpiryWorker
	MonthlyResetWorker    *worker.CalendarWorker
	WeeklyStandingsWorker *worker.CalendarWorker
	SSEHub                *sse.Hub
	ResilientPublisher    *event.ResilientPublisher
	Locking               *Locking
}

type shutdownable interface {
	Shutdown(context.Context) error
}

// GracefulShutdown stops components in dependency order:
// 1. SSE hub (ends open streams, which would otherwise hold the server open)
// 2. HTTP server (stop accepting new requests)
// 3. Scheduler, timers and the worker pool (finish in-flight jobs)
// 4. Event publisher (flush pending retries)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if c.SSEHub != nil {
		c.SSEHub.Stop()
	}

	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}

	if c.DuelExpiryWorker != nil {
		shutdownWorker(ctx, WorkerNameDuelExpiry, c.DuelExpiryWorker)
	}
	if c.MonthlyResetWorker != nil {
		shutdownWorker(ctx, WorkerNameMonthlyReset, c.MonthlyResetWorker)
	}
	if c.WeeklyStandingsWorker != nil {
		shutdownWorker(ctx, WorkerNameWeeklyStandings, c.WeeklyStandingsWorker)
	}

	if c.WorkerPool != nil {
		c.WorkerPool.Stop()
	}

	if c.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := c.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if c.Locking != nil {
		if err := c.Locking.Close(); err != nil {
			slog.Error(LogMsgRedisCloseFailed, "error", err)
		}
	}

	slog.Info(LogMsgServerStopped)
}

func shutdownWorker(ctx context.Context, name string, w shutdownable) {
	if err := w.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgWorkerShutdownFailed, "error", err)
	}
}
