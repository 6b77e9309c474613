package queue

import (
	"context"
	"sync"

	"github.com/pgtui/gridq/logger"
)

// Task is a unit of mutation work. Tasks run strictly one at a time in
// enqueue order; a task's error is reported through its own callback and
// never stops the worker.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
	Done func(err error)
}

// Queue serializes mutations through a single worker goroutine.
type Queue struct {
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc

	onBusy func()
	onIdle func()

	mu      sync.Mutex
	pending int
	closed  bool
	wg      sync.WaitGroup
}

// Option configures a Queue.
type Option func(*Queue)

// WithBusyIdle registers callbacks fired when the queue transitions from
// empty to non-empty and back. Callbacks run on the worker goroutine.
func WithBusyIdle(onBusy, onIdle func()) Option {
	return func(q *Queue) {
		q.onBusy = onBusy
		q.onIdle = onIdle
	}
}

// New starts the worker and returns the queue. Close must be called to
// release it.
func New(opts ...Option) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:  make(chan Task, 256),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue adds a task. Returns false when the queue has been closed.
func (q *Queue) Enqueue(t Task) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	wasEmpty := q.pending == 0
	q.pending++
	q.mu.Unlock()

	if wasEmpty && q.onBusy != nil {
		q.onBusy()
	}
	q.tasks <- t
	return true
}

// Pending reports how many tasks are queued or running.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Close stops the worker after the current task and waits for it to exit.
// Queued tasks that have not started are completed with the context error.
// The task channel is never closed, so an Enqueue racing with Close cannot
// panic; it either lands in the buffer or is refused by the closed flag.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case t := <-q.tasks:
			q.execute(t)
		case <-q.ctx.Done():
			q.drain()
			return
		}
	}
}

// drain completes whatever is left in the buffer with the context error.
func (q *Queue) drain() {
	for {
		select {
		case t := <-q.tasks:
			q.execute(t)
		default:
			return
		}
	}
}

func (q *Queue) execute(t Task) {
	var err error
	if q.ctx.Err() != nil {
		err = q.ctx.Err()
	} else {
		err = t.Run(q.ctx)
	}
	if err != nil {
		logger.Error("mutation task failed", map[string]any{"task": t.Name, "error": err.Error()})
	}
	if t.Done != nil {
		t.Done(err)
	}

	q.mu.Lock()
	q.pending--
	nowIdle := q.pending == 0
	q.mu.Unlock()
	if nowIdle && q.onIdle != nil {
		q.onIdle()
	}
}
