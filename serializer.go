package hnswix

import (
	"context"
	"sync"
)

// Logger is the structured logging interface every mutating or lifecycle
// path in this package logs through. The default implementation wraps
// log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type mutationJob struct {
	fn     func(context.Context) error
	result chan error
}

// Serializer funnels every index-mutating operation through a single
// worker goroutine so effects apply in submission order, mirroring the
// channel-plus-goroutine discipline the mutation queue is built around:
// Enqueue hands off a closure, Start's worker loop runs closures strictly
// one at a time, and Wait drains everything already queued.
type Serializer struct {
	jobs   chan mutationJob
	done   chan struct{}
	logger Logger

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSerializer creates a Serializer with the given queue depth. Call
// Start before Enqueue.
func NewSerializer(bufSize int, logger Logger) *Serializer {
	if bufSize <= 0 {
		bufSize = 100
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Serializer{
		jobs:   make(chan mutationJob, bufSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the single worker goroutine. It is safe to call once;
// subsequent calls are no-ops.
func (s *Serializer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

func (s *Serializer) run() {
	defer close(s.done)
	for job := range s.jobs {
		err := job.fn(context.Background())
		if err != nil {
			s.logger.Warn("hnswix: mutation failed", "error", err)
		}
		job.result <- err
	}
}

// Enqueue submits fn for execution by the worker, blocking until it has
// run (or ctx is canceled first, or Close has already happened). Its
// return value is the closure's own error, not a queueing error — except
// when the queue itself is closed or canceled, where the sentinel
// ErrQueueClosed/ctx.Err() is returned instead.
func (s *Serializer) Enqueue(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrQueueClosed
	}
	s.mu.Unlock()

	job := mutationJob{fn: fn, result: make(chan error, 1)}
	select {
	case s.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-job.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueAsync submits fn like Enqueue but returns as soon as it has been
// queued, without waiting for the worker to run it. Any error fn returns
// is only visible via the logger's Warn output, mirroring the
// log-but-don't-fail discipline async offload needs.
func (s *Serializer) EnqueueAsync(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrQueueClosed
	}
	s.mu.Unlock()

	job := mutationJob{fn: fn, result: make(chan error, 1)}
	select {
	case s.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new work and waits for the worker to drain
// everything already queued.
func (s *Serializer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	close(s.jobs)
	if started {
		<-s.done
	}
	return nil
}

// Wait blocks until the queue has fully drained without closing it,
// useful for tests and for an operator who wants a save point. It works
// by enqueueing a no-op and waiting for it to come back out, which is only
// correct because the worker is single-threaded and strictly FIFO.
func (s *Serializer) Wait(ctx context.Context) error {
	return s.Enqueue(ctx, func(context.Context) error { return nil })
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
