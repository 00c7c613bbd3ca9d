package availability

import "time"

// Timer is a scheduled action that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The controller depends on this rather than
// on the time package so tests can drive the quiet period by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}
