package periodic

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Callback is invoked on every firing of a timer. err is nil for a normal
// expiry and ErrCanceled when the firing was canceled. elapsed is the time
// since the previous firing's reference point: for the duration policy that
// is when the previous callback was entered (or Start, for the first
// firing); for the timepoint policy it is the previous grid point, so an
// on-time firing reports one interval.
//
// Returning false ends the sequence. A canceled firing always ends it,
// whatever the callback returns.
type Callback func(err error, elapsed time.Duration) bool

// Timer invokes a callback periodically under one of two re-arming
// policies, on top of a one-shot Waiter and an Executor. One Timer runs at
// most one schedule at a time; applications wanting many concurrent
// schedules hold many Timers.
//
// A Timer must not be copied after first use. All methods may be called
// from any goroutine.
type Timer struct {
	mu        sync.Mutex
	exec      Executor
	clock     Clock
	logger    Logger
	newWaiter func() Waiter
	seq       *sequence
}

// New returns a Timer dispatching through exec, with a SteadyClock and the
// DefaultLogger unless overridden by options. It panics if exec is nil;
// there is no default executor.
func New(exec Executor, opts ...Option) *Timer {
	if exec == nil {
		panic(errors.New("periodic: New requires a non-nil Executor"))
	}
	t := &Timer{
		exec:   exec,
		clock:  SteadyClock{},
		logger: DefaultLogger,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.newWaiter == nil {
		t.newWaiter = func() Waiter { return NewWaiter(t.clock, t.exec) }
	}
	return t
}

// StartDuration starts invoking fn every interval, first at the clock
// reading plus interval. Each next deadline is one interval after the
// previous callback returned, so callback latency stretches the real-world
// spacing between firings; elapsed values never undershoot the interval.
//
// It panics if the timer is already running, interval is negative, or fn is
// nil.
func (t *Timer) StartDuration(interval time.Duration, fn Callback) {
	now := t.clock.Now()
	t.start(policyDuration, interval, now, now.Add(interval), fn)
}

// StartDurationAt is StartDuration with an explicit first deadline. A first
// deadline in the past fires immediately. After the first firing the
// duration policy applies as usual.
func (t *Timer) StartDurationAt(interval time.Duration, first time.Time, fn Callback) {
	t.start(policyDuration, interval, t.clock.Now(), first, fn)
}

// StartTimepoint starts invoking fn on the fixed grid now+interval,
// now+2*interval, and so on. Deadlines stay on the grid no matter how long
// callbacks take or how late firings run; a firing whose grid point has
// already passed runs immediately, and the sequence works through the
// backlog without skipping grid points.
//
// It panics if the timer is already running, interval is negative, or fn is
// nil.
func (t *Timer) StartTimepoint(interval time.Duration, fn Callback) {
	t.start(policyTimepoint, interval, time.Time{}, t.clock.Now().Add(interval), fn)
}

// StartTimepointAt is StartTimepoint with an explicit first grid point. The
// grid becomes first, first+interval, first+2*interval, and so on. The
// first firing reports an elapsed of one interval when on time, however far
// away first is.
func (t *Timer) StartTimepointAt(interval time.Duration, first time.Time, fn Callback) {
	t.start(policyTimepoint, interval, time.Time{}, first, fn)
}

func (t *Timer) start(p policy, interval time.Duration, ref, first time.Time, fn Callback) {
	if interval < 0 {
		panic(errors.Errorf("periodic: negative interval %s", interval))
	}
	if fn == nil {
		panic(errors.New("periodic: nil callback"))
	}
	if p == policyTimepoint {
		ref = first.Add(-interval)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq != nil && !t.seq.done.Load() {
		panic(errors.New("periodic: timer already running"))
	}

	s := &sequence{
		waiter:   t.newWaiter(),
		fn:       fn,
		policy:   p,
		interval: interval,
		ref:      ref,
		clock:    t.clock,
		logger:   t.logger,
	}
	t.seq = s
	s.logger.Info("start", "policy", p, "interval", interval, "first", first)
	s.waiter.ArmAt(first, s.fire)
}

// Cancel requests cancellation of the running schedule: the pending firing
// is abandoned and the callback is invoked one final time with ErrCanceled,
// delivered through the executor. Cancel itself never runs the callback and
// does not wait for the final invocation. On an idle timer it is a no-op,
// and repeated calls are harmless.
//
// If a firing is in flight when Cancel is called, that firing completes
// normally and the cancellation lands on the sequence's next arm, still as
// exactly one canceled invocation.
func (t *Timer) Cancel() {
	t.mu.Lock()
	seq := t.seq
	t.mu.Unlock()
	if seq == nil || seq.done.Load() {
		return
	}
	seq.logger.Info("cancel")
	seq.waiter.Cancel()
}

// Adopt moves other's running schedule onto t: t's own schedule, if any, is
// canceled exactly as by Cancel, and other is left idle and restartable.
// The moved schedule keeps firing without interruption and keeps the clock,
// executor, and logger of the handle that started it. Adopting from an idle
// timer just cancels t's schedule. Self-adoption is a no-op.
//
// Two goroutines adopting from each other at once is caller misuse, as with
// any cross-goroutine move of ownership.
func (t *Timer) Adopt(other *Timer) {
	if other == nil {
		panic(errors.New("periodic: adopt from a nil timer"))
	}
	if other == t {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	if s := t.seq; s != nil && !s.done.Load() {
		s.logger.Info("cancel")
		s.waiter.Cancel()
	}
	t.seq = other.seq
	other.seq = nil
	t.logger.Info("adopt", "running", t.seq != nil && !t.seq.done.Load())
}

// Running reports whether a schedule is active: true from Start* until the
// final callback (false return or canceled firing) has run.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq != nil && !t.seq.done.Load()
}

type policy int

const (
	policyDuration policy = iota
	policyTimepoint
)

func (p policy) String() string {
	switch p {
	case policyDuration:
		return "duration"
	case policyTimepoint:
		return "timepoint"
	}
	return "unknown"
}

// sequence is the state of one schedule, created by Start* and owned by
// whichever Timer currently holds it. Firings are strictly sequential: the
// next arm is issued only from inside the current firing, so no lock guards
// ref. done flips once per sequence: at entry of a canceled firing, or after
// the callback returns false.
type sequence struct {
	waiter   Waiter
	fn       Callback
	policy   policy
	interval time.Duration
	ref      time.Time
	done     atomic.Bool
	clock    Clock
	logger   Logger
}

// fire handles one completion of the waiter: it reports elapsed time to the
// callback and either re-arms per the policy or ends the sequence. It runs
// on the executor.
func (s *sequence) fire(err error) {
	now := s.clock.Now()
	elapsed := now.Sub(s.ref)

	canceled := err != nil && stderrors.Is(err, ErrCanceled)
	if canceled {
		// Flip before the callback so the final invocation can restart the
		// timer it came from.
		s.done.Store(true)
	}

	cont := s.fn(err, elapsed)

	switch {
	case canceled:
		s.logger.Info("stop", "reason", "canceled")
	case !cont:
		s.done.Store(true)
		s.logger.Info("stop", "reason", "callback")
	case s.policy == policyDuration:
		s.ref = now
		s.logger.Info("fire", "elapsed", elapsed)
		s.waiter.ArmAfter(s.interval, s.fire)
	default:
		next := s.ref.Add(2 * s.interval)
		s.ref = s.ref.Add(s.interval)
		s.logger.Info("fire", "elapsed", elapsed, "next", next)
		s.waiter.ArmAt(next, s.fire)
	}
}
