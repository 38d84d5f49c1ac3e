// Package delay counts down control-rate ticks to time events in milliseconds.
package delay

import "time"

// Delay converts a millisecond duration into a number of update ticks and
// reports when that many ticks have passed.
//
// Ready is meant to be called once per update. It keeps reporting true after
// the countdown expires, until Start arms it again.
//
// A Delay is not safe for concurrent use; each instance should have one owner.
type Delay struct {
	// int64 keeps long delays at high update rates from overflowing
	counter         int64
	startCount      int64
	microsPerUpdate uint32
}

// New creates a Delay for an update routine running at updateRateHz.
// It panics if updateRateHz is zero.
func New(updateRateHz uint32) *Delay {
	if updateRateHz == 0 {
		panic("delay: update rate must be positive")
	}
	micros := 1_000_000 / updateRateHz
	if micros == 0 {
		// Rates above 1 MHz cannot be counted in whole microseconds
		micros = 1
	}
	return &Delay{microsPerUpdate: micros}
}

// Set sets the delay time in milliseconds. The new value takes effect on the
// next Start.
func (d *Delay) Set(millisToWait uint32) {
	d.startCount = int64(millisToWait) * 1000 / int64(d.microsPerUpdate)
}

// SetDuration is Set for a time.Duration, truncated to whole milliseconds.
// Negative durations are treated as zero.
func (d *Delay) SetDuration(wait time.Duration) {
	if wait < 0 {
		wait = 0
	}
	d.Set(uint32(wait.Milliseconds()))
}

// Start arms the countdown with the value from the last Set.
func (d *Delay) Start() {
	d.counter = d.startCount
}

// Ready counts down one tick and reports whether the delay has expired.
func (d *Delay) Ready() bool {
	d.counter--
	return d.counter < 0
}

// Ticks returns the number of updates the delay lasts.
func (d *Delay) Ticks() int64 {
	return d.startCount
}

// MicrosPerUpdate returns the update period in whole microseconds.
func (d *Delay) MicrosPerUpdate() uint32 {
	return d.microsPerUpdate
}
