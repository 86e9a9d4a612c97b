package periodic

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Waiter is a one-shot wait primitive: arm it for a deadline and the
// completion function is delivered exactly once through an executor, with a
// nil error on expiry or ErrCanceled on cancellation.
//
// At most one arm may be outstanding; arming an armed waiter panics. Cancel
// is sticky: it fails the pending arm, and every later arm completes
// immediately with ErrCanceled instead of waiting. The periodic engine
// leans on that stickiness to collapse a cancellation that races an
// in-flight firing into the firing's next re-arm.
type Waiter interface {
	// ArmAt arms for the absolute time at. A deadline at or before the
	// clock's current reading completes immediately with a nil error.
	ArmAt(at time.Time, fn func(err error))

	// ArmAfter arms for duration d from the clock's current reading.
	ArmAfter(d time.Duration, fn func(err error))

	// Cancel fails the pending arm, if any, with ErrCanceled, and marks the
	// waiter so later arms complete canceled too. Completion is delivered
	// through the executor, never from inside Cancel. Idempotent.
	Cancel()
}

// NewWaiter returns a Waiter that reads and sleeps on clock and delivers
// completions through exec. Each outstanding arm costs one goroutine.
func NewWaiter(clock Clock, exec Executor) Waiter {
	if clock == nil {
		panic(errors.New("periodic: NewWaiter requires a non-nil Clock"))
	}
	if exec == nil {
		panic(errors.New("periodic: NewWaiter requires a non-nil Executor"))
	}
	return &clockWaiter{clock: clock, exec: exec}
}

type clockWaiter struct {
	mu       sync.Mutex
	clock    Clock
	exec     Executor
	armed    bool
	canceled bool
	alarm    Alarm
	stop     chan struct{}
}

var _ Waiter = (*clockWaiter)(nil)

func (w *clockWaiter) ArmAt(at time.Time, fn func(error)) {
	w.arm(at.Sub(w.clock.Now()), fn)
}

func (w *clockWaiter) ArmAfter(d time.Duration, fn func(error)) {
	w.arm(d, fn)
}

func (w *clockWaiter) arm(d time.Duration, fn func(error)) {
	if fn == nil {
		panic(errors.New("periodic: waiter armed with a nil completion"))
	}
	w.mu.Lock()
	if w.armed {
		w.mu.Unlock()
		panic(errors.New("periodic: waiter already armed"))
	}
	if w.canceled {
		w.mu.Unlock()
		w.dispatch(fn, ErrCanceled)
		return
	}
	alarm := w.clock.NewAlarm(d)
	stop := make(chan struct{})
	w.armed, w.alarm, w.stop = true, alarm, stop
	w.mu.Unlock()

	go func() {
		select {
		case <-alarm.C():
			if w.take() {
				w.dispatch(fn, nil)
			} else {
				// Cancel got there between the alarm firing and here; the
				// cancellation is delivered on its behalf.
				w.dispatch(fn, ErrCanceled)
			}
		case <-stop:
			w.dispatch(fn, ErrCanceled)
		}
	}()
}

// take claims the pending arm for a normal completion. It reports false when
// Cancel already claimed it.
func (w *clockWaiter) take() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return false
	}
	w.armed = false
	w.alarm, w.stop = nil, nil
	return true
}

func (w *clockWaiter) Cancel() {
	w.mu.Lock()
	if w.canceled {
		w.mu.Unlock()
		return
	}
	w.canceled = true
	var (
		alarm Alarm
		stop  chan struct{}
	)
	if w.armed {
		w.armed = false
		alarm, stop = w.alarm, w.stop
		w.alarm, w.stop = nil, nil
	}
	w.mu.Unlock()

	if stop != nil {
		close(stop)
		alarm.Stop()
	}
}

func (w *clockWaiter) dispatch(fn func(error), err error) {
	if submitErr := w.exec.Submit(func() { fn(err) }); submitErr != nil {
		panic(errors.Wrap(submitErr, "periodic: executor rejected a timer completion"))
	}
}
