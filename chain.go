package periodic

import (
	"fmt"
	"runtime"
	"time"
)

// CallbackWrapper decorates the given Callback with some behavior.
type CallbackWrapper func(Callback) Callback

// Chain is a sequence of CallbackWrappers that decorates a callback with
// cross-cutting behaviors like logging or panic recovery.
type Chain struct {
	wrappers []CallbackWrapper
}

// NewChain returns a Chain consisting of the given CallbackWrappers.
func NewChain(c ...CallbackWrapper) Chain {
	return Chain{c}
}

// Then decorates the given callback with all wrappers in the chain.
//
// This:
//
//	NewChain(m1, m2, m3).Then(cb)
//
// is equivalent to:
//
//	m1(m2(m3(cb)))
func (c Chain) Then(cb Callback) Callback {
	for i := range c.wrappers {
		cb = c.wrappers[len(c.wrappers)-i-1](cb)
	}
	return cb
}

// Recover traps panics in the wrapped callback and logs them with the
// provided logger. A firing whose callback panicked counts as having
// returned true, so the sequence keeps running.
func Recover(logger Logger) CallbackWrapper {
	return func(cb Callback) Callback {
		return func(err error, elapsed time.Duration) (cont bool) {
			defer func() {
				if r := recover(); r != nil {
					const size = 64 << 10
					buf := make([]byte, size)
					buf = buf[:runtime.Stack(buf, false)]
					rerr, ok := r.(error)
					if !ok {
						rerr = fmt.Errorf("%v", r)
					}
					logger.Error(rerr, "panic", "stack", "...\n"+string(buf))
					cont = true
				}
			}()
			return cb(err, elapsed)
		}
	}
}

// Once adapts f into a Callback that ends the sequence after one invocation.
// The timer still delivers a final canceled firing to f if the single normal
// firing never happens.
func Once(f func(err error, elapsed time.Duration)) Callback {
	return func(err error, elapsed time.Duration) bool {
		f(err, elapsed)
		return false
	}
}
