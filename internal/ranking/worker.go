package ranking

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Worker periodically sweeps every profile so scores decay and recover even
// without lifecycle events.
type Worker struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

// NewWorker creates a sweep worker. It does not start until Start is called.
func NewWorker(service *Service, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		service:  service,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.started.Store(true)
	go w.run(ctx)
}

// Running reports whether the sweep loop has started and not yet exited.
func (w *Worker) Running() bool {
	if !w.started.Load() {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Stop signals the loop to exit and waits for it.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("ranking sweep worker started", "interval", w.interval)
	for {
		select {
		case <-ticker.C:
			result, err := w.service.RecalculateAll(ctx)
			if err != nil {
				w.logger.Error("scheduled ranking sweep failed", "error", err)
				continue
			}
			w.logger.Info("scheduled ranking sweep done",
				"processed", result.Processed, "errors", result.Errors)
		case <-w.stop:
			w.logger.Info("ranking sweep worker stopping")
			return
		case <-ctx.Done():
			return
		}
	}
}
