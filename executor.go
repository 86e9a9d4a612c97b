package periodic

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
)

// Executor runs the tasks a timer dispatches: firings, including the final
// canceled one, are always delivered through Submit and never invoked
// synchronously by Cancel or Stop. Submit must not block on the task being
// run. The executor is shared infrastructure and must outlive every timer
// dispatching to it; a Submit error during dispatch is treated as a contract
// violation and panics.
type Executor interface {
	Submit(fn func()) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func()) error

// Submit calls f(fn).
func (f ExecutorFunc) Submit(fn func()) error { return f(fn) }

// GoExecutor runs each task in its own goroutine. Successive firings of one
// timer never overlap regardless of executor, so this is the right default
// when no serialization across timers is needed.
type GoExecutor struct{}

var _ Executor = GoExecutor{}

// Submit starts fn in a new goroutine.
func (GoExecutor) Submit(fn func()) error {
	if fn == nil {
		return errors.New("periodic: nil task")
	}
	go fn()
	return nil
}

// Loop is an Executor that runs all tasks on a single goroutine in
// submission order. Timers sharing a Loop get their callbacks serialized
// with each other, the single-threaded event-loop model. It may be started
// and stopped.
//
// The task queue is unbounded, so Submit never blocks.
type Loop struct {
	mu      sync.Mutex
	tasks   *queue.Queue
	wake    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

var _ Executor = (*Loop)(nil)

// NewLoop returns a Loop ready to accept tasks. Tasks only run once Start
// or Run is called.
func NewLoop() *Loop {
	return &Loop{
		tasks: queue.New(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Submit queues fn for execution. It returns ErrStopped after Stop.
func (l *Loop) Submit(fn func()) error {
	if fn == nil {
		return errors.New("periodic: nil task")
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.tasks.Add(fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Start begins processing tasks in its own goroutine.
func (l *Loop) Start() {
	go l.Run()
}

// Run processes tasks on the calling goroutine until Stop is called. Tasks
// queued before Stop are run before Run returns. A second concurrent Run is
// a no-op.
func (l *Loop) Run() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	for {
		l.drain()
		select {
		case <-l.wake:
		case <-l.done:
			l.drain()
			l.mu.Lock()
			l.running = false
			l.mu.Unlock()
			return
		}
	}
}

// Stop stops the loop. It does not wait for the loop goroutine to finish
// draining; it may be called from a task. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.done)
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if l.tasks.Length() == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.tasks.Remove().(func())
		l.mu.Unlock()
		fn()
	}
}
