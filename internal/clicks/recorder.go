package clicks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"biolinks/internal/db"
	"biolinks/internal/metrics"
)

// ErrQueueFull is returned by Record when the recorder cannot accept more
// clicks right now. The click is dropped.
var ErrQueueFull = errors.New("click queue full")

// ErrRecorderStopped is returned by Record once Start has stopped its workers.
var ErrRecorderStopped = errors.New("click recorder stopped")

// RecordStore appends click events. *db.DB implements it.
type RecordStore interface {
	RecordClick(ctx context.Context, linkID uuid.UUID) error
}

// Recorder writes clicks in the background so the visitor's request never
// waits on the database.
type Recorder struct {
	store   RecordStore
	queue   chan uuid.UUID
	workers int
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewRecorder creates a Recorder with the given queue size and worker count.
func NewRecorder(store RecordStore, queueSize, workers int, log *slog.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 2
	}
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{
		store:   store,
		queue:   make(chan uuid.UUID, queueSize),
		workers: workers,
		timeout: 5 * time.Second,
		log:     log,
	}
}

// Start runs the workers until ctx is cancelled, then drains what is queued
// and returns.
func (r *Recorder) Start(ctx context.Context) {
	r.log.Info("click recorder started", slog.Int("workers", r.workers))

	for range r.workers {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.run(ctx)
		}()
	}
	r.wg.Wait()

	// Later Record calls fail instead of queueing clicks nobody will write.
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.drain()
	r.log.Info("click recorder stopped")
}

func (r *Recorder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-r.queue:
			r.write(id)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case id := <-r.queue:
			r.write(id)
		default:
			return
		}
	}
}

// write stores one click. It does not use the request context: the visitor
// has usually navigated away by now.
func (r *Recorder) write(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := r.store.RecordClick(ctx, id)
	switch {
	case err == nil:
		metrics.RecordClick(metrics.ClickRecorded)
	case errors.Is(err, db.ErrLinkNotFound):
		metrics.RecordClick(metrics.ClickIgnored)
		r.log.Debug("click on unknown or inactive link ignored", slog.String("link_id", id.String()))
	default:
		metrics.RecordClick(metrics.ClickFailed)
		r.log.Error("failed to record click", slog.String("link_id", id.String()), slog.Any("error", err))
	}
}

// Record queues a click without blocking.
func (r *Recorder) Record(linkID uuid.UUID) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		metrics.RecordClick(metrics.ClickFailed)
		r.log.Warn("click recorder stopped, dropping click", slog.String("link_id", linkID.String()))
		return ErrRecorderStopped
	}

	select {
	case r.queue <- linkID:
		return nil
	default:
		metrics.RecordClick(metrics.ClickFailed)
		r.log.Warn("click queue full, dropping click", slog.String("link_id", linkID.String()))
		return ErrQueueFull
	}
}
