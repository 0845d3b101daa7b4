package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dustin/shop-recommender/config"
	"github.com/dustin/shop-recommender/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RebuildFunc runs one full index rebuild
type RebuildFunc func(ctx context.Context) error

// RefreshWorker owns the rebuild lifecycle: it fires a rebuild at startup,
// on a cron schedule and on demand, and guarantees rebuilds never overlap.
// One trigger can wait behind the running rebuild; triggers arriving while
// one is already waiting are dropped with a log note.
type RefreshWorker struct {
	name     string
	cron     *cron.Cron
	rebuild  RebuildFunc
	schedule string
	logger   *logger.Logger
	entryID  cron.EntryID

	trigger    chan string
	stop       chan struct{}
	done       chan struct{}
	rebuilding atomic.Bool
}

// NewRefreshWorker creates a cron-scheduled refresh worker with validation and defaults
func NewRefreshWorker(cfg *config.RefreshConfig, name string, rebuild RebuildFunc, log *logger.Logger) (*RefreshWorker, error) {
	// nightly rebuild by default, before the morning traffic ramp
	schedule := "0 4 * * *"
	if cfg != nil && cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule '%s': %v", cfg.Schedule, err)
		}
		schedule = cfg.Schedule
	}

	return &RefreshWorker{
		name:     name,
		cron:     cron.New(),
		rebuild:  rebuild,
		schedule: schedule,
		logger:   log.WithComponent("refresh-worker"),
		trigger:  make(chan string, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins the run loop, schedules the cron entry and enqueues the
// startup rebuild
func (w *RefreshWorker) Start() error {
	w.logger.Info(fmt.Sprintf("Starting refresh worker: %s (schedule %q)", w.name, w.schedule))

	entryID, err := w.cron.AddFunc(w.schedule, func() {
		w.enqueue("schedule")
	})
	if err != nil {
		w.logger.Error("Failed to schedule refresh worker " + w.name + ": " + err.Error())
		return err
	}

	w.entryID = entryID
	w.cron.Start()

	go w.run()
	w.enqueue("startup")

	w.logger.Info("Refresh worker started successfully: " + w.name)

	return nil
}

// TriggerNow enqueues an on-demand rebuild without waiting for it
func (w *RefreshWorker) TriggerNow() {
	w.enqueue("request")
}

// enqueue puts a rebuild trigger into the single pending slot
func (w *RefreshWorker) enqueue(reason string) {
	select {
	case w.trigger <- reason:
		w.logger.Debug("Rebuild trigger queued: " + reason)
	default:
		w.logger.Warn("Rebuild already pending, dropping trigger: " + reason)
	}
}

// run executes queued rebuilds one at a time. A rebuild in flight is not
// preempted; Stop waits for it to finish.
func (w *RefreshWorker) run() {
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return
		case reason := <-w.trigger:
			w.rebuilding.Store(true)
			w.logger.Info("Executing index rebuild (trigger: " + reason + ")")

			if err := w.rebuild(context.Background()); err != nil {
				w.logger.Error("Index rebuild failed (trigger: " + reason + "): " + err.Error())
			} else {
				w.logger.Info("Index rebuild completed (trigger: " + reason + ")")
			}
			w.rebuilding.Store(false)
		}
	}
}

// Stop gracefully shuts down the refresh worker
func (w *RefreshWorker) Stop() error {
	w.logger.Info("Stopping refresh worker: " + w.name)

	if w.entryID > 0 {
		w.cron.Remove(w.entryID)
	}

	ctx := w.cron.Stop()
	<-ctx.Done() // wait for any cron callback to return

	close(w.stop)
	<-w.done // wait for an in-flight rebuild to finish

	w.logger.Info("Refresh worker stopped: " + w.name)

	return nil
}

// IsRunning checks if the worker has active cron entries
func (w *RefreshWorker) IsRunning() bool {
	return len(w.cron.Entries()) > 0
}

// Rebuilding reports whether a rebuild is currently in flight
func (w *RefreshWorker) Rebuilding() bool {
	return w.rebuilding.Load()
}
