package engine

// Hooks are the synthesis callbacks the engine drives.
type Hooks interface {
	// UpdateControl runs once every AudioRate/ControlRate samples.
	UpdateControl()
	// UpdateAudio returns the next sample, centered on zero.
	UpdateAudio() int
}

// Ticker fires a callback at a fixed rate, usually from a hardware timer
// interrupt.
type Ticker interface {
	ConfigurePeriodicTick(rateHz uint32, tick func()) error
}

// SampleWriter pushes one PWM duty value to the output stage.
type SampleWriter interface {
	WriteOutputSample(duty uint16)
}

// SampleWriterFunc adapts a function to SampleWriter.
type SampleWriterFunc func(duty uint16)

// WriteOutputSample calls f(duty).
func (f SampleWriterFunc) WriteOutputSample(duty uint16) { f(duty) }

// HooksFuncs adapts a pair of functions to Hooks. A nil Control is skipped
// and a nil Audio yields silence.
type HooksFuncs struct {
	Control func()
	Audio   func() int
}

// UpdateControl calls h.Control.
func (h HooksFuncs) UpdateControl() {
	if h.Control != nil {
		h.Control()
	}
}

// UpdateAudio calls h.Audio.
func (h HooksFuncs) UpdateAudio() int {
	if h.Audio == nil {
		return 0
	}
	return h.Audio()
}

// Ensure adapters implement the interfaces.
var (
	_ Hooks        = HooksFuncs{}
	_ SampleWriter = SampleWriterFunc(nil)
)
