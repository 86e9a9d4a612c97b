package periodic

import (
	"sync"
	"time"
)

// ManualClock is a Clock whose reading only moves when told to. Production
// code injects SteadyClock or SystemClock; tests inject a ManualClock and
// drive it with Advance or Set to get deterministic firings and exact
// elapsed values.
//
// Set may move the reading backward, which models an adjustable wall clock:
// pending alarms keep their due times and simply come due later.
type ManualClock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	pending []*manualAlarm
}

var _ Clock = (*ManualClock)(nil)

// NewManualClock returns a ManualClock reading start.
func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{now: start}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Now returns the clock's current reading.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewAlarm returns an alarm due at the current reading plus d. With d <= 0
// the alarm has already fired, mirroring time.NewTimer.
func (c *ManualClock) NewAlarm(d time.Duration) Alarm {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := &manualAlarm{clock: c, due: c.now.Add(d), ch: make(chan time.Time, 1)}
	if d <= 0 {
		a.dead = true
		a.ch <- c.now
		return a
	}
	c.pending = append(c.pending, a)
	c.cond.Broadcast()
	return a
}

// Advance moves the reading forward by d, firing every alarm that comes due
// on the way.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceTo(c.now.Add(d))
}

// Set moves the reading to t, firing alarms whose due time is at or before
// t. Moving backward fires nothing.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceTo(t)
}

// BlockUntil blocks until at least n alarms are pending on the clock. Tests
// use it to wait for a re-arm before advancing again.
func (c *ManualClock) BlockUntil(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.cond.Wait()
	}
}

func (c *ManualClock) advanceTo(t time.Time) {
	c.now = t
	kept := c.pending[:0]
	for _, a := range c.pending {
		if a.due.After(t) {
			kept = append(kept, a)
			continue
		}
		a.dead = true
		a.ch <- t
	}
	for i := len(kept); i < len(c.pending); i++ {
		c.pending[i] = nil
	}
	c.pending = kept
}

type manualAlarm struct {
	clock *ManualClock
	due   time.Time
	ch    chan time.Time
	dead  bool
}

func (a *manualAlarm) C() <-chan time.Time { return a.ch }

func (a *manualAlarm) Stop() bool {
	c := a.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.dead {
		return false
	}
	a.dead = true
	for i, p := range c.pending {
		if p == a {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	return true
}
