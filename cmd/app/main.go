package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/DuelBot_Go/internal/bootstrap"
	"github.com/osse101/DuelBot_Go/internal/config"
	"github.com/osse101/DuelBot_Go/internal/database"
	"github.com/osse101/DuelBot_Go/internal/duel"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/points"
	"github.com/osse101/DuelBot_Go/internal/reconcile"
	"github.com/osse101/DuelBot_Go/internal/reset"
	"github.com/osse101/DuelBot_Go/internal/scheduler"
	"github.com/osse101/DuelBot_Go/internal/selector"
	"github.com/osse101/DuelBot_Go/internal/server"
	"github.com/osse101/DuelBot_Go/internal/sse"
	"github.com/osse101/DuelBot_Go/internal/worker"
)

const (
	shutdownTimeout    = 30 * time.Second
	reconcileJob       = "reconcile"
	judgeRetryJob      = "judge-retry"
	judgeRetryInterval = 2 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg, logger.DefaultServiceName)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	for _, w := range warnings {
		slog.Warn(w)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applied, err := database.Migrate(ctx, cfg.GetDBConnString())
	if err != nil {
		return err
	}
	slog.Info("Database schema up to date", "version", applied)

	dbPool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	repos := bootstrap.InitializeRepositories(dbPool)

	eventBus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	locking, err := bootstrap.InitializeLocking(ctx, cfg)
	if err != nil {
		return err
	}

	archiver, err := bootstrap.InitializeArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	judgeClient := bootstrap.InitializeJudge(cfg)
	tuning := cfg.Tuning

	duelService := duel.NewService(repos.Duel, repos.Handles, judgeClient, selector.New(nil), locking.Locker, publisher,
		duel.Config{StartingPoints: tuning.StartingPoints})
	pointsService := points.NewService(repos.Points, repos.Handles, judgeClient, publisher, tuning.StartingPoints)
	resetService := reset.NewService(repos.Points, repos.Handles, archiver, publisher, tuning.StartingPoints)
	engine := reconcile.NewEngine(repos.Handles, repos.Points, judgeClient, locking.Locker, publisher, reconcile.Config{
		StartingPoints: tuning.StartingPoints,
		Parallelism:    tuning.ReconcileParallelism,
	})

	hub := sse.NewHub()
	hub.Start()

	expiryWorker := worker.NewDuelExpiryWorker(duelService, tuning.DuelExpiry.Std())
	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:     eventBus,
		SSEHub:       hub,
		Settings:     repos.Handles,
		ExpiryWorker: expiryWorker,
	}); err != nil {
		return err
	}
	if err := expiryWorker.Start(ctx); err != nil {
		return err
	}

	pool := worker.NewPool(tuning.WorkerCount, tuning.WorkerQueueSize)
	pool.Start()
	sched := scheduler.New(pool)
	sched.Schedule(reconcileJob, tuning.ReconcileInterval.Std(), engine, true)
	sched.Schedule(judgeRetryJob, judgeRetryInterval, duel.NewJudgeRetryJob(duelService), true)

	monthlyReset := worker.NewMonthlyResetWorker(resetService, tuning.ResetDay, tuning.ResetHour)
	monthlyReset.Start()
	weeklyStandings := worker.NewWeeklyStandingsWorker(pointsService, tuning.StandingsWeekday.Std(), tuning.StandingsHour)
	weeklyStandings.Start()

	srv := server.NewServer(
		server.Config{Port: cfg.Port, APIKey: cfg.APIKey, TrustedProxies: cfg.TrustedProxies},
		server.Services{
			Duel:      duelService,
			Points:    pointsService,
			Reset:     resetService,
			SSEHub:    hub,
			DB:        dbPool,
			Readiness: locking.ReadinessChecks(),
		},
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:                srv,
		Scheduler:             sched,
		WorkerPool:            pool,
		DuelExpiryWorker:      expiryWorker,
		MonthlyResetWorker:    monthlyReset,
		WeeklyStandingsWorker: weeklyStandings,
		SSEHub:                hub,
		ResilientPublisher:    publisher,
		Locking:               locking,
	})

	return err
}
