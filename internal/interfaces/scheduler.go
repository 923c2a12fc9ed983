package interfaces

import "time"

// CancelHandle stops a scheduled callback. Cancel reports whether the
// callback was prevented from running.
type CancelHandle interface {
	Cancel() bool
}

type Scheduler interface {
	ScheduleAfter(delay time.Duration, fn func()) CancelHandle
}
