package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests. Timers fire synchronously inside Advance.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	owner    *Fake
	deadline time.Time
	f        func()
}

// NewFake returns a Fake clock starting at a fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc schedules fn to run once the fake clock has been advanced past duration.
func (f *Fake) AfterFunc(duration time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTimer{owner: f, deadline: f.now.Add(duration), f: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer whose deadline has passed, earliest first.
func (f *Fake) Advance(duration time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(duration)

	var due, pending []*fakeTimer
	for _, t := range f.timers {
		if !t.deadline.After(f.now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	f.timers = pending
	f.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		t.f()
	}
}

// Armed returns the number of timers that have neither fired nor been stopped.
func (f *Fake) Armed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	for i, candidate := range t.owner.timers {
		if candidate == t {
			t.owner.timers = append(t.owner.timers[:i], t.owner.timers[i+1:]...)
			return true
		}
	}
	return false
}
