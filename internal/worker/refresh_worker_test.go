package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dustin/shop-recommender/config"
	"github.com/dustin/shop-recommender/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&config.LoggingConfig{Level: "error"})
	require.NoError(t, err)
	return log
}

func TestNewRefreshWorker(t *testing.T) {
	t.Run("Defaults the schedule when unset", func(t *testing.T) {
		w, err := NewRefreshWorker(nil, "test", func(context.Context) error { return nil }, testLogger(t))

		require.NoError(t, err)
		assert.Equal(t, "0 4 * * *", w.schedule)
	})

	t.Run("Rejects an invalid cron schedule", func(t *testing.T) {
		cfg := &config.RefreshConfig{Schedule: "not a schedule"}

		_, err := NewRefreshWorker(cfg, "test", func(context.Context) error { return nil }, testLogger(t))

		assert.Error(t, err)
	})
}

func TestRefreshWorkerStartupRebuild(t *testing.T) {
	var calls atomic.Int32
	w, err := NewRefreshWorker(nil, "test", func(context.Context) error {
		calls.Add(1)
		return nil
	}, testLogger(t))
	require.NoError(t, err)

	require.NoError(t, w.Start())
	defer w.Stop()

	assert.True(t, w.IsRunning())
	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond, "startup trigger should run one rebuild")
}

func TestRefreshWorkerNeverOverlapsRebuilds(t *testing.T) {
	var active atomic.Int32
	var calls atomic.Int32
	release := make(chan struct{})

	w, err := NewRefreshWorker(nil, "test", func(context.Context) error {
		if active.Add(1) > 1 {
			t.Error("two rebuilds ran concurrently")
		}
		calls.Add(1)
		<-release
		active.Add(-1)
		return nil
	}, testLogger(t))
	require.NoError(t, err)

	require.NoError(t, w.Start())

	// wait for the startup rebuild to be in flight
	assert.Eventually(t, func() bool { return w.Rebuilding() }, time.Second, 10*time.Millisecond)

	// one trigger queues, the rest are dropped
	w.TriggerNow()
	w.TriggerNow()
	w.TriggerNow()

	release <- struct{}{} // finish the startup rebuild
	release <- struct{}{} // finish the single queued rebuild

	assert.Eventually(t, func() bool {
		return calls.Load() == 2 && !w.Rebuilding()
	}, time.Second, 10*time.Millisecond, "exactly one queued rebuild should follow the startup one")

	// no further rebuilds pending
	assert.Never(t, func() bool {
		return calls.Load() > 2
	}, 200*time.Millisecond, 20*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}
