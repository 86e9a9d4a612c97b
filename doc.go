/*
Package periodic invokes a callback repeatedly on a single timer, without
dedicating a goroutine or thread to each schedule. A Timer arms a one-shot
wait, and every completion re-arms the next one from inside the callback
dispatch, so a process can run thousands of timers over one executor.

# Starting a timer

Construct a Timer over an Executor and start it with one of two policies:

	t := periodic.New(periodic.GoExecutor{})
	t.StartDuration(500*time.Millisecond, func(err error, elapsed time.Duration) bool {
		fmt.Println("fired after", elapsed)
		return err == nil
	})

The callback returns whether to keep going; returning false ends the
schedule. A canceled firing (err is ErrCanceled) ends it regardless.

# Duration vs timepoint periodicity

StartDuration measures each interval from the previous firing: callback
latency and scheduling delay stretch the spacing between firings, and the
reported elapsed never undershoots the interval. StartTimepoint instead
fixes a grid of deadlines at first, first+interval, first+2*interval, and
holds to it: a 500ms timer whose firings run 15ms late still fires at the
next grid point, 485ms later, and elapsed values report the true spacing.
If processing overruns a whole grid point the next firing runs immediately;
grid points are never skipped, so a long stall is followed by a burst of
immediate firings as the sequence works through the backlog.

# Cancellation

Cancel ends a running schedule asynchronously: the callback is invoked
exactly one final time with ErrCanceled, delivered through the executor
like any firing. After that final invocation the timer is idle and may be
started again, even from inside the final callback itself. A running
schedule is kept alive by its own continuation chain: dropping the Timer
without calling Cancel leaves the sequence firing with no way to stop it.
For a one-shot wait with these semantics, see Once and the Waiter
interface.

# Clocks

Timers read an injected Clock. SteadyClock, the default, is monotonic:
wall-clock adjustments never disturb the schedule. SystemClock follows the
wall clock, for schedules that should track it. ManualClock is a
deterministic fake for tests.
*/
package periodic
