package queue

import (
	"context"
	"sync"
	"time"
)

// Job represents a deferred unit of work, such as a scheduled update.
type Job struct {
	Key     string
	Payload any
	RunAt   time.Time
}

// Queue is the enqueue contract used for deferred work.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler runs a job when it becomes due.
type Handler func(ctx context.Context, job Job) error

// Nop queue swallows jobs (used for tests or disabled scheduling).
type Nop struct{}

var _ Queue = (*Nop)(nil)

func (n *Nop) Enqueue(ctx context.Context, job Job) error { return nil }

// Timer runs jobs in-process once their RunAt passes. Enqueuing a key that is
// already pending replaces the earlier job. Pending jobs are lost on Close.
type Timer struct {
	handler Handler
	onError func(Job, error)

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

var _ Queue = (*Timer)(nil)

// NewTimer returns a timer queue dispatching to handler. onError may be nil.
func NewTimer(handler Handler, onError func(Job, error)) *Timer {
	return &Timer{
		handler: handler,
		onError: onError,
		pending: make(map[string]*time.Timer),
	}
}

// Enqueue schedules job. The context only scopes the call; jobs run with a
// background context.
func (q *Timer) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	if existing, ok := q.pending[job.Key]; ok {
		existing.Stop()
	}
	delay := time.Until(job.RunAt)
	if delay < 0 {
		delay = 0
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		if q.pending[job.Key] == timer {
			delete(q.pending, job.Key)
		}
		q.mu.Unlock()
		if err := q.handler(context.Background(), job); err != nil && q.onError != nil {
			q.onError(job, err)
		}
	})
	q.pending[job.Key] = timer
	return nil
}

// Pending reports the number of jobs waiting to run.
func (q *Timer) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops every pending job.
func (q *Timer) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for key, timer := range q.pending {
		timer.Stop()
		delete(q.pending, key)
	}
}
