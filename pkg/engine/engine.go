// Package engine drives synthesis callbacks at audio and control rate and
// delivers biased PWM duty values to an output stage.
//
// The engine never touches hardware. Platforms supply a Ticker that fires at
// the audio rate (a timer interrupt on a microcontroller) and a SampleWriter
// that loads the duty value into the PWM compare register.
package engine

import (
	"fmt"
	"sync/atomic"
)

const (
	// AudioRate is the sample rate in Hz. It trades interrupt rate against
	// PWM resolution: at 16384 Hz a 16 MHz timer leaves 488 PWM steps, some
	// headroom above 8-bit wavetables.
	AudioRate = 16384
	// AudioRateShift is log2(AudioRate), for dividing by the rate with a shift.
	AudioRateShift = 14
	// PWMResolution is the PWM period in timer counts at AudioRate.
	PWMResolution = 488
	// Bias moves zero-centered audio to the middle of the PWM range.
	Bias = PWMResolution / 2
	// DefaultControlRate is the UpdateControl rate in Hz.
	DefaultControlRate = 64
	// DefaultBufferSize is the number of samples buffered between AudioHook
	// and OutputAudio.
	DefaultBufferSize = 256
)

// Config sets the engine rates and output range. Zero fields take defaults.
type Config struct {
	AudioRate   uint32
	ControlRate uint32
	Resolution  uint16
	Bias        uint16
	BufferSize  int
}

// DefaultConfig returns the configuration for the standard 16384 Hz PWM output.
func DefaultConfig() Config {
	return Config{
		AudioRate:   AudioRate,
		ControlRate: DefaultControlRate,
		Resolution:  PWMResolution,
		Bias:        Bias,
		BufferSize:  DefaultBufferSize,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.AudioRate == 0 {
		c.AudioRate = def.AudioRate
	}
	if c.ControlRate == 0 {
		c.ControlRate = def.ControlRate
	}
	if c.Resolution == 0 {
		c.Resolution = def.Resolution
	}
	if c.Bias == 0 {
		c.Bias = c.Resolution / 2
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	return c
}

// Stats counts engine activity.
type Stats struct {
	Produced  uint64 // samples computed
	Consumed  uint64 // samples written to the output
	Underruns uint64 // output ticks that found the buffer empty
	Controls  uint64 // UpdateControl calls
}

// Engine schedules Hooks and buffers their output.
//
// Next, Render and AudioHook belong to the producer side and must be called
// from one goroutine. OutputAudio is the consumer side and may run
// concurrently with the producer, typically from a timer interrupt.
type Engine struct {
	cfg   Config
	hooks Hooks

	controlPeriod  uint32
	controlCounter uint32

	buf *ring

	produced  atomic.Uint64
	consumed  atomic.Uint64
	underruns atomic.Uint64
	controls  atomic.Uint64
}

// New creates an engine calling hooks.
func New(cfg Config, hooks Hooks) *Engine {
	cfg = cfg.WithDefaults()

	period := cfg.AudioRate / cfg.ControlRate
	if period == 0 {
		period = 1
	}

	return &Engine{
		cfg:           cfg,
		hooks:         hooks,
		controlPeriod: period,
		buf:           newRing(cfg.BufferSize),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// ControlPeriod returns the number of audio samples between control updates.
func (e *Engine) ControlPeriod() uint32 {
	return e.controlPeriod
}

// Next computes one output sample. UpdateControl runs before the first sample
// of every control period. The biased value is clamped to the PWM range.
func (e *Engine) Next() uint16 {
	if e.controlCounter == 0 {
		e.hooks.UpdateControl()
		e.controls.Add(1)
		e.controlCounter = e.controlPeriod
	}
	e.controlCounter--

	e.produced.Add(1)
	return e.bias(e.hooks.UpdateAudio())
}

// Render fills dst with consecutive samples and returns it.
func (e *Engine) Render(dst []uint16) []uint16 {
	for i := range dst {
		dst[i] = e.Next()
	}
	return dst
}

// AudioHook tops up the output buffer. Call it as often as possible from the
// main loop.
func (e *Engine) AudioHook() {
	for e.buf.len() < e.buf.cap() {
		e.buf.push(e.Next())
	}
}

// Buffered returns the number of samples waiting for OutputAudio.
func (e *Engine) Buffered() int {
	return e.buf.len()
}

// OutputAudio writes the oldest buffered sample to w. When the buffer is
// empty it writes the bias level, which is silence.
func (e *Engine) OutputAudio(w SampleWriter) {
	duty, ok := e.buf.pop()
	if !ok {
		e.underruns.Add(1)
		duty = e.cfg.Bias
	} else {
		e.consumed.Add(1)
	}
	w.WriteOutputSample(duty)
}

// Start configures t to call OutputAudio(w) at the audio rate.
func (e *Engine) Start(t Ticker, w SampleWriter) error {
	if err := t.ConfigurePeriodicTick(e.cfg.AudioRate, func() { e.OutputAudio(w) }); err != nil {
		return fmt.Errorf("failed to configure audio tick: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Produced:  e.produced.Load(),
		Consumed:  e.consumed.Load(),
		Underruns: e.underruns.Load(),
		Controls:  e.controls.Load(),
	}
}

// bias shifts a zero-centered sample into [0, Resolution].
func (e *Engine) bias(sample int) uint16 {
	v := sample + int(e.cfg.Bias)
	if v < 0 {
		return 0
	}
	if v > int(e.cfg.Resolution) {
		return e.cfg.Resolution
	}
	return uint16(v)
}
