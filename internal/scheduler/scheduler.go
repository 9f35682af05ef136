// Package scheduler defers the computer's reply so a human can see it happen.
//
// Contract: a task scheduled with a delay runs once, after the delay, on its own goroutine.
// The caller is responsible for rejecting other mutations of the same game until the task
// has run; the session manager does this with Session.Pending.
package scheduler

import (
	"sync"
	"time"
)

type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// Timer - wall clock scheduler backed by time.AfterFunc.
type Timer struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	timers  map[*time.Timer]struct{}
	stopped bool
}

func NewTimer() *Timer {
	return &Timer{timers: make(map[*time.Timer]struct{})}
}

func (that *Timer) Schedule(delay time.Duration, task func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stopped {
		return
	}

	that.wg.Add(1)

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		defer that.wg.Done()

		that.mu.Lock()
		delete(that.timers, timer)
		that.mu.Unlock()

		task()
	})
	that.timers[timer] = struct{}{}
}

// Stop - cancels pending tasks and waits for running ones. Later Schedule calls are ignored.
func (that *Timer) Stop() {
	that.mu.Lock()
	that.stopped = true
	for timer := range that.timers {
		if timer.Stop() {
			that.wg.Done()
		}
		delete(that.timers, timer)
	}
	that.mu.Unlock()

	that.wg.Wait()
}

// Wait - blocks until every scheduled task has run.
func (that *Timer) Wait() {
	that.wg.Wait()
}

// Immediate - runs the task synchronously, ignoring the delay.
type Immediate struct{}

func (Immediate) Schedule(_ time.Duration, task func()) {
	task()
}
