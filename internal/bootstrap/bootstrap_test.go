package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/archive"
	"github.com/osse101/DuelBot_Go/internal/concurrency"
	"github.com/osse101/DuelBot_Go/internal/config"
	"github.com/osse101/DuelBot_Go/internal/sse"
	"github.com/osse101/DuelBot_Go/internal/worker"
)

func TestCleanupLogs_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("session_2026-01-%02d_00-00-00.log", i+1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event_deadletter.jsonl"), nil, 0o644))

	cleanupLogs(dir, LogFileRetentionCount)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Len(t, names, LogFileRetentionCount+1)
	assert.Contains(t, names, "event_deadletter.jsonl")
	assert.Contains(t, names, "session_2026-01-12_00-00-00.log")
	assert.NotContains(t, names, "session_2026-01-03_00-00-00.log")
}

func TestCleanupLogs_MissingDir(t *testing.T) {
	assert.NotPanics(t, func() { cleanupLogs(filepath.Join(t.TempDir(), "missing"), 3) })
}

func TestInitializeEventSystem_CreatesDeadLetterDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deadletter.jsonl")
	bus, publisher, err := InitializeEventSystem(&config.Config{DeadLetterPath: path})
	require.NoError(t, err)
	require.NotNil(t, bus)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = publisher.Shutdown(ctx)
	})

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestInitializeLocking_WithoutRedis(t *testing.T) {
	locking, err := InitializeLocking(context.Background(), &config.Config{})
	require.NoError(t, err)

	assert.IsType(t, &concurrency.LockManager{}, locking.Locker)
	assert.Nil(t, locking.Redis)
	assert.Empty(t, locking.ReadinessChecks())
	assert.NoError(t, locking.Close())
}

func TestInitializeArchiver_WithoutBucket(t *testing.T) {
	archiver, err := InitializeArchiver(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Equal(t, archive.Nop{}, archiver)
}

func TestGracefulShutdown_SkipsMissingComponents(t *testing.T) {
	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), ShutdownComponents{})
	})
}

func TestGracefulShutdown_StopsWorkers(t *testing.T) {
	hub := sse.NewHub()
	hub.Start()
	pool := worker.NewPool(1, 1)
	pool.Start()
	expiry := worker.NewDuelExpiryWorker(nil, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	GracefulShutdown(ctx, ShutdownComponents{
		WorkerPool:       pool,
		DuelExpiryWorker: expiry,
		SSEHub:           hub,
	})

	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, pool.Enqueue(nil))
}
