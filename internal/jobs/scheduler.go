package jobs

import "time"

// Scheduler is the deferred-invocation boundary: run task once after
// delay. The reconciliation worker never implements timing itself.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// TimerScheduler runs each task on its own goroutine after the delay
// elapses.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, task func()) {
	time.AfterFunc(delay, task)
}
