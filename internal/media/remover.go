// Package media handles stored media objects for posts and stories:
// uploads pass through directly, deletions run on a background worker
// pool so request handlers and cascades never block on object storage.
package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ObjectRemover deletes a single stored object by its public location.
type ObjectRemover interface {
	Remove(ctx context.Context, location string) error
}

// RemoverConfig controls the concurrency characteristics of the remover.
type RemoverConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Remover asynchronously deletes media objects left behind by removed
// posts, stories and accounts.
type Remover struct {
	store   ObjectRemover
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errRemoverClosed = errors.New("media remover closed")

// NewRemover constructs a background worker pool that deletes objects.
func NewRemover(store ObjectRemover, cfg RemoverConfig, logger *slog.Logger) *Remover {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Remover{
		store:   store,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}

	return r
}

// Discard schedules deletion of the given object locations. It never blocks
// the caller beyond queue admission: when the remover is shut down or the
// queue is saturated the locations are dropped with a log line, since a
// leaked object is preferable to a stalled deletion cascade.
func (r *Remover) Discard(ctx context.Context, locations ...string) {
	for _, location := range locations {
		if location == "" {
			continue
		}
		if err := r.enqueue(ctx, location); err != nil {
			r.logger.Warn("media discard dropped", "location", location, "error", err)
		}
	}
}

func (r *Remover) enqueue(ctx context.Context, location string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return errRemoverClosed
	case r.jobs <- location:
		return nil
	default:
		return errors.New("queue full")
	}
}

// Shutdown waits for the worker pool to drain outstanding deletions.
func (r *Remover) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		r.cancel()
		close(r.jobs)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *Remover) worker() {
	defer r.wg.Done()

	for location := range r.jobs {
		r.remove(location)
	}
}

func (r *Remover) remove(location string) {
	if r.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.Remove(ctx, location); err != nil {
		r.logger.Error("remove media object", "location", location, "error", err)
	}
}
