package periodic

// Option represents a modification to the default behavior of a Timer.
type Option func(*Timer)

// WithClock overrides the clock used for time readings and alarms. Tests
// typically pass a ManualClock.
func WithClock(clock Clock) Option {
	return func(t *Timer) {
		t.clock = clock
	}
}

// WithLogger uses the provided logger for logging timer events.
func WithLogger(logger Logger) Option {
	return func(t *Timer) {
		t.logger = logger
	}
}

// WithWaiterFunc overrides how the timer obtains the one-shot waiter backing
// each schedule. The default builds one from the timer's clock and executor
// with NewWaiter. A fresh waiter is obtained on every Start*.
func WithWaiterFunc(fn func() Waiter) Option {
	return func(t *Timer) {
		t.newWaiter = fn
	}
}
