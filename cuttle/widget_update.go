package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// updateInterval limits scope redraws to roughly 60 fps.
const updateInterval = 16 * time.Millisecond

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// This is required because Fyne widgets cannot be updated directly from goroutines.
// The callback should copy data quickly and return as fast as possible.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}

// throttle lets at most one event through per interval.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{interval: interval, now: time.Now}
}

// ready reports whether the interval has elapsed since the last accepted
// event and, if so, accepts this one.
func (t *throttle) ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
