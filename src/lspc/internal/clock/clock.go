package clock

import (
	"time"

	"go.uber.org/fx"
)

// Module provides the wall clock to inject using fx.
var Module = fx.Provide(New)

// Clock is an interface that abstracts the functionality for measuring time and scheduling timers.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// AfterFunc waits for the duration to elapse and then calls f in its own goroutine.
	AfterFunc(duration time.Duration, f func()) Timer
}

// Timer is a handle to a pending AfterFunc call.
type Timer interface {
	// Stop prevents the Timer from firing. It returns false if the timer has already fired or been stopped.
	Stop() bool
}

type clock struct{}

// New creates a new instance of Clock.
func New() Clock {
	return clock{}
}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) AfterFunc(duration time.Duration, f func()) Timer {
	return time.AfterFunc(duration, f)
}
