package main

import (
	"errors"
	"time"
)

// maxCatchUp bounds the ticks fired by one Poll after a long stall.
const maxCatchUp = 64

// pollTicker implements engine.Ticker from the main loop by comparing the
// clock against the next due tick.
type pollTicker struct {
	period time.Duration
	next   time.Time
	tick   func()
}

func (t *pollTicker) ConfigurePeriodicTick(rateHz uint32, tick func()) error {
	if rateHz == 0 {
		return errors.New("zero tick rate")
	}
	t.period = time.Second / time.Duration(rateHz)
	t.tick = tick
	t.next = time.Time{}
	return nil
}

// Poll fires every tick due at now.
func (t *pollTicker) Poll(now time.Time) {
	if t.tick == nil {
		return
	}
	if t.next.IsZero() {
		t.next = now
	}
	for n := 0; !now.Before(t.next); n++ {
		if n == maxCatchUp {
			// Drop the backlog
			t.next = now.Add(t.period)
			return
		}
		t.tick()
		t.next = t.next.Add(t.period)
	}
}
