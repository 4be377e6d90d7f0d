package common

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type GoTimeClock struct {
}

func (cl *GoTimeClock) Now() time.Time {
	return time.Now()
}

// TestClock is a manually driven clock.
type TestClock struct {
	sync.Mutex
	now time.Time
}

func NewTestClock(now time.Time) *TestClock {
	return &TestClock{now: now}
}

func (cl *TestClock) Now() time.Time {
	cl.Lock()
	defer cl.Unlock()

	return cl.now
}

func (cl *TestClock) PassTime(d time.Duration) {
	cl.SetTime(cl.Now().Add(d))
}

func (cl *TestClock) SetTime(t time.Time) {
	cl.Lock()
	defer cl.Unlock()

	if t.Before(cl.now) {
		return
	}
	cl.now = t
}
