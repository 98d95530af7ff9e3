// Command reset runs the monthly points reset once, outside the API
// process. It is meant for recovering a missed boundary by hand; the
// period claim makes a second run for the same month a no-op.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/osse101/DuelBot_Go/internal/bootstrap"
	"github.com/osse101/DuelBot_Go/internal/config"
	"github.com/osse101/DuelBot_Go/internal/database"
	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/reset"
)

const serviceName = "duel-bot-reset"

func main() {
	community := flag.String("community", "", "reset only this community (default: all communities)")
	at := flag.String("at", "", "RFC 3339 time whose month is reset (default: now)")
	flag.Parse()

	now := time.Now().UTC()
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			log.Fatalf("Invalid -at value: %v", err)
		}
		now = parsed.UTC()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg, serviceName)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	if err := run(context.Background(), cfg, *community, now); err != nil {
		slog.Error("Reset failed", "error", err)
		logFile.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, communityID string, now time.Time) error {
	dbPool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	archiver, err := bootstrap.InitializeArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	repos := bootstrap.InitializeRepositories(dbPool)

	// No subscribers live in this process, so nothing is announced
	svc := reset.NewService(repos.Points, repos.Handles, archiver, nil, cfg.Tuning.StartingPoints)

	if communityID != "" {
		result, err := svc.ResetCommunity(ctx, communityID, now)
		if errors.Is(err, domain.ErrAlreadyReset) {
			slog.Info("Period already reset", "community_id", communityID, "period", domain.ResetPeriod(now))
			return nil
		}
		if err != nil {
			return err
		}
		logResult(*result)
		return nil
	}

	results, err := svc.ResetAll(ctx, now)
	for _, r := range results {
		logResult(r)
	}
	return err
}

func logResult(r domain.ResetResult) {
	if r.Skipped {
		slog.Info("Period already reset", "community_id", r.CommunityID, "period", r.Period)
		return
	}
	slog.Info("Community reset",
		"community_id", r.CommunityID,
		"period", r.Period,
		"balances", r.RecordsAffected,
		"starting_value", r.StartingValue)
}
