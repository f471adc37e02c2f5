package leadflow

import (
	"context"
	"time"
)

// FallbackScheduler runs a task once after a delay. The production scheduler
// is a plain timer goroutine: at-most-once, no cancellation, lost on process
// teardown. That tradeoff is acceptable because the fallback SMS is a
// courtesy, not a contractual notification.
type FallbackScheduler interface {
	Schedule(delay time.Duration, task func(ctx context.Context))
}

// TimerScheduler schedules tasks on in-process timers.
type TimerScheduler struct {
	// Timeout bounds each task run. Zero means 30 seconds.
	Timeout time.Duration
}

// Schedule fires the task once after the delay.
func (s TimerScheduler) Schedule(delay time.Duration, task func(ctx context.Context)) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		task(ctx)
	})
}
