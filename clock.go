package periodic

import "time"

// The Clock interface provides the time readings and one-shot alarms the
// timer runs on. It should be used rather than the `time` package in
// situations where you want to mock things.
type Clock interface {
	// Now returns the clock's current reading.
	Now() time.Time

	// NewAlarm returns an Alarm that fires once, after at least duration d.
	// A non-positive d yields an alarm that has already fired.
	NewAlarm(d time.Duration) Alarm
}

// The Alarm is an interface for time.Timer, and can also be swapped in mocks.
// This *does* change its API so that it can fit into an interface -- rather
// than using the channel at .C, you should call C() and use the returned
// channel just as you would .C. An Alarm fires at most once and is not reset.
type Alarm interface {
	C() <-chan time.Time
	Stop() bool
}

// SteadyClock reads time.Now with its monotonic component intact, so
// arithmetic on its readings is immune to wall-clock adjustment. It is the
// clock a Timer uses unless overridden with WithClock.
type SteadyClock struct{}

// Now returns the current time, including the monotonic reading.
func (SteadyClock) Now() time.Time { return time.Now() }

// NewAlarm returns an alarm backed by a standard time.Timer.
func (SteadyClock) NewAlarm(d time.Duration) Alarm {
	return &standardAlarm{timer: time.NewTimer(d)}
}

// SystemClock reads the wall clock only: the monotonic component is stripped
// from every reading, so arithmetic on its readings tracks operating-system
// clock adjustments. Alarms still wake on kernel timers; it is the reported
// times and elapsed values that follow the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time, monotonic reading stripped.
func (SystemClock) Now() time.Time { return time.Now().Round(0) }

// NewAlarm returns an alarm backed by a standard time.Timer.
func (SystemClock) NewAlarm(d time.Duration) Alarm {
	return &standardAlarm{timer: time.NewTimer(d)}
}

type standardAlarm struct {
	timer *time.Timer
}

var _ Alarm = (*standardAlarm)(nil)

func (a *standardAlarm) C() <-chan time.Time {
	return a.timer.C
}

func (a *standardAlarm) Stop() bool {
	return a.timer.Stop()
}
