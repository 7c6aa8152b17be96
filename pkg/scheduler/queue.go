package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/metrics"
)

// DefaultRecursionLimit is how many times one job may run in a single flush.
const DefaultRecursionLimit = 100

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the logger used for dropped jobs.
func WithLogger(l *slog.Logger) QueueOption {
	return func(q *Queue) { q.logger = l }
}

// WithMetrics records enqueue and flush metrics.
func WithMetrics(c *metrics.Collector) QueueOption {
	return func(q *Queue) { q.metrics = c }
}

// WithTracer traces each flush as a span.
func WithTracer(t trace.Tracer) QueueOption {
	return func(q *Queue) { q.tracer = t }
}

// WithRecursionLimit overrides DefaultRecursionLimit. Values below 1 are
// ignored.
func WithRecursionLimit(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

// WithErrorHandler receives the error reported when a job exceeds the
// recursion limit.
func WithErrorHandler(fn func(error)) QueueOption {
	return func(q *Queue) { q.onError = fn }
}

// WithPostFlush runs fn at the end of every top-level Flush, whether or
// not any job ran. Hosts flush after each task and timer, so fn sees every
// batch of changes.
func WithPostFlush(fn func()) QueueOption {
	return func(q *Queue) { q.postFlush = fn }
}

type job struct {
	id uint64
	fn func()
}

// Queue is a deduplicating FIFO of jobs keyed by ID.
type Queue struct {
	mu       sync.Mutex
	jobs     []job
	pending  map[uint64]bool
	flushing bool

	limit   int
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer

	onError   func(error)
	postFlush func()
}

// NewQueue creates an empty queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		pending: make(map[uint64]bool),
		limit:   DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	if q.tracer == nil {
		q.tracer = otel.Tracer("github.com/vango-dev/reconcile/pkg/scheduler")
	}
	return q
}

// Enqueue adds fn under id unless a job with that id is already pending.
// It reports whether the job was added.
func (q *Queue) Enqueue(id uint64, fn func()) bool {
	q.mu.Lock()
	queued := !q.pending[id]
	if queued {
		q.pending[id] = true
		q.jobs = append(q.jobs, job{id: id, fn: fn})
	}
	q.mu.Unlock()

	q.metrics.ObserveEnqueue(queued)
	return queued
}

// SetErrorHandler replaces the handler given with WithErrorHandler.
func (q *Queue) SetErrorHandler(fn func(error)) {
	q.mu.Lock()
	q.onError = fn
	q.mu.Unlock()
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Flushing reports whether a flush is in progress.
func (q *Queue) Flushing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flushing
}

// Flush runs pending jobs until the queue is empty and returns how many
// ran. Jobs queued while flushing run in the same flush. A nested call
// from inside a job returns 0 immediately.
func (q *Queue) Flush(ctx context.Context) int {
	q.mu.Lock()
	if q.flushing {
		q.mu.Unlock()
		return 0
	}
	if len(q.jobs) == 0 {
		q.mu.Unlock()
		q.afterFlush()
		return 0
	}
	q.flushing = true
	q.mu.Unlock()

	_, span := q.tracer.Start(ctx, "scheduler.flush")
	defer span.End()

	start := time.Now()
	runs := make(map[uint64]int)
	ran := 0

	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.flushing = false
			q.mu.Unlock()
			break
		}
		j := q.jobs[0]
		q.jobs[0] = job{}
		q.jobs = q.jobs[1:]
		delete(q.pending, j.id)
		q.mu.Unlock()

		runs[j.id]++
		if runs[j.id] > q.limit {
			if runs[j.id] == q.limit+1 {
				q.report(j.id)
			}
			continue
		}

		q.run(j)
		ran++
	}

	span.SetAttributes(attribute.Int("scheduler.jobs", ran))
	q.metrics.ObserveFlush(ran, time.Since(start))
	q.afterFlush()
	return ran
}

func (q *Queue) afterFlush() {
	if q.postFlush != nil {
		q.postFlush()
	}
}

func (q *Queue) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("scheduler job panicked", "job", j.id, "panic", fmt.Sprint(r))
		}
	}()
	j.fn()
}

func (q *Queue) report(id uint64) {
	err := rerrors.New("R009").With("job", id).With("limit", q.limit)
	q.logger.Error(err.Message, err.LogArgs()...)
	q.mu.Lock()
	onError := q.onError
	q.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}
