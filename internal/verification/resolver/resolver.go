// Package resolver runs proof resolution for submitted verification requests
// on a background goroutine, fed by the service's pending queue.
package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "veridian/pkg/domain"
)

// Resolver is the slice of the verification service the worker drives.
type Resolver interface {
	Resolve(ctx context.Context, requestID id.RequestID) error
}

// Worker drains the pending queue and resolves each request.
type Worker struct {
	service Resolver
	queue   <-chan id.RequestID
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Worker.
type Option func(*Worker)

// WithTimeout bounds each resolution attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(w *Worker) {
		w.timeout = timeout
	}
}

// New creates a resolver worker over the service's pending queue.
func New(service Resolver, queue <-chan id.RequestID, logger *slog.Logger, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		service: service,
		queue:   queue,
		timeout: 10 * time.Second,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins draining the queue in a background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case requestID, ok := <-w.queue:
			if !ok {
				return
			}
			w.resolve(requestID)
		}
	}
}

// drain resolves whatever is still queued at shutdown without blocking on an
// empty channel.
func (w *Worker) drain() {
	for {
		select {
		case requestID, ok := <-w.queue:
			if !ok {
				return
			}
			w.resolve(requestID)
		default:
			return
		}
	}
}

func (w *Worker) resolve(requestID id.RequestID) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.service.Resolve(ctx, requestID); err != nil {
		w.logger.Error("failed to resolve verification request",
			"error", err,
			"request_id", requestID,
		)
	}
}

// Stop halts the worker and waits for in-flight work, draining any queued
// requests first.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}
