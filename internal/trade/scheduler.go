package trade

import (
	"time"

	"daytrader-client/internal/interfaces"
)

// TimerScheduler runs callbacks on their own goroutine via time.AfterFunc.
type TimerScheduler struct{}

var _ interfaces.Scheduler = TimerScheduler{}

func (TimerScheduler) ScheduleAfter(delay time.Duration, fn func()) interfaces.CancelHandle {
	return timerHandle{t: time.AfterFunc(delay, fn)}
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Cancel() bool {
	return h.t.Stop()
}
