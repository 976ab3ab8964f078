// Package worker consumes fetch triggers and runs the activity fetch
// pipeline, decoupling webhook response latency from fetch latency.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/dnguyen800/ha-strava/internal/adapters/mq/queue"
	"github.com/dnguyen800/ha-strava/pkg/logger"
	"github.com/dnguyen800/ha-strava/pkg/metrics"
)

// Fetcher runs one fetch-and-publish pass. Failures are handled inside;
// the worker only observes latency.
type Fetcher interface {
	FetchAndPublish(ctx context.Context)
}

// Queue defines how the worker receives triggers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Trigger
}

// Worker processes triggers until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// FetchWorker implements Worker for the activity fetch pipeline.
type FetchWorker struct {
	queue   Queue
	fetcher Fetcher
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a worker with configuration options.
func New(q Queue, fetcher Fetcher, opts ...Option) *FetchWorker {
	w := &FetchWorker{
		queue:    q,
		fetcher:  fetcher,
		name:     "fetch-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop.
func (w *FetchWorker) Run(ctx context.Context) {
	defer close(w.done)

	w.logger.Debug(ctx, "worker started", logger.String("worker", w.name))

	triggers := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-triggers:
			if !ok {
				// queue closed, nothing more to do
				return
			}
			w.process(ctx, t)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *FetchWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *FetchWorker) process(ctx context.Context, t queue.Trigger) {
	start := time.Now()

	w.logger.Debug(ctx, "processing fetch trigger",
		logger.String("worker", w.name),
		logger.String("reason", t.Reason),
		logger.String("source", t.Source),
	)

	w.fetcher.FetchAndPublish(ctx)

	metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
}
