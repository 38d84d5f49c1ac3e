package synth

import (
	"time"

	"github.com/itohio/gocuttlefish/pkg/delay"
	"github.com/itohio/gocuttlefish/pkg/engine"
	"github.com/itohio/gocuttlefish/pkg/fixmath"
	"github.com/itohio/gocuttlefish/pkg/line"
)

// VoiceConfig configures a Voice.
type VoiceConfig struct {
	AudioRate   uint32
	ControlRate uint32
	Table       []int8
	StartFreq   float32
	Attack      time.Duration
	Release     time.Duration
}

// Voice is one oscillator with a frequency glide and an attack/release
// envelope gated by a countdown. It implements engine.Hooks.
//
// Like the Lines and the Delay it is built from, a Voice has a single owner:
// Glide and Note must not race with UpdateControl.
type Voice struct {
	osc *Oscil

	glide       line.Line[fixmath.Q16n16]
	glideTarget fixmath.Q16n16
	glideSteps  int

	env       line.Line[fixmath.Q8n8]
	envTarget fixmath.Q8n8
	envSteps  int
	gain      fixmath.Q8n8

	gate     *delay.Delay
	gateOpen bool

	controlRate  uint32
	attackSteps  int
	releaseSteps int
}

var _ engine.Hooks = (*Voice)(nil)

// NewVoice creates a silent voice tuned to cfg.StartFreq.
func NewVoice(cfg VoiceConfig) *Voice {
	if cfg.AudioRate == 0 {
		cfg.AudioRate = engine.AudioRate
	}
	if cfg.ControlRate == 0 {
		cfg.ControlRate = engine.DefaultControlRate
	}
	if cfg.Table == nil {
		cfg.Table = Sin256[:]
	}

	v := &Voice{
		osc:         NewOscil(cfg.Table, cfg.AudioRate),
		gate:        delay.New(cfg.ControlRate),
		controlRate: cfg.ControlRate,
	}
	v.attackSteps = v.steps(cfg.Attack)
	v.releaseSteps = v.steps(cfg.Release)

	v.osc.SetFreq(cfg.StartFreq)
	v.glide.Set(v.osc.PhaseInc())
	return v
}

// steps converts a duration to control ticks, at least one.
func (v *Voice) steps(d time.Duration) int {
	n := int(d.Milliseconds() * int64(v.controlRate) / 1000)
	if n < 1 {
		n = 1
	}
	return n
}

// Glide moves the frequency to hz over d, one Line step per control tick.
func (v *Voice) Glide(hz float32, d time.Duration) {
	v.glideTarget = v.osc.PhaseIncFromFreq(hz)
	v.glideSteps = v.steps(d)
	v.glide.SetRamp(v.osc.PhaseInc(), v.glideTarget, v.glideSteps)
}

// Note opens the gate for d, ramping up over the attack time. When the gate
// closes the level ramps down over the release time.
func (v *Voice) Note(d time.Duration) {
	v.gate.SetDuration(d)
	v.gate.Start()
	v.gateOpen = true
	v.rampTo(fixmath.Q8n8One, v.attackSteps)
}

// rampTo starts an envelope segment from the current gain.
func (v *Voice) rampTo(target fixmath.Q8n8, steps int) {
	v.envTarget = target
	v.envSteps = steps
	v.env.SetRamp(v.gain, target, steps)
}

// UpdateControl advances the glide, the gate and the envelope by one tick.
func (v *Voice) UpdateControl() {
	if v.glideSteps > 0 {
		inc := v.glide.Next()
		v.glideSteps--
		if v.glideSteps == 0 {
			// Land exactly on the target; Line steps are truncated
			inc = v.glideTarget
			v.glide.Set(inc)
		}
		v.osc.SetPhaseInc(inc)
	}

	if v.gateOpen && v.gate.Ready() {
		v.gateOpen = false
		v.rampTo(0, v.releaseSteps)
	}

	if v.envSteps > 0 {
		v.gain = v.env.Next()
		v.envSteps--
		if v.envSteps == 0 {
			v.gain = v.envTarget
			v.env.Set(v.gain)
		}
	}
}

// UpdateAudio returns the oscillator output scaled by the envelope.
func (v *Voice) UpdateAudio() int {
	return (int(v.osc.Next()) * int(v.gain)) >> fixmath.Q8n8Bits
}

// Freq returns the current oscillator frequency in Hz.
func (v *Voice) Freq() float32 {
	return v.osc.Freq()
}

// Level returns the envelope level, 0 to 1.
func (v *Voice) Level() float32 {
	return v.gain.Float()
}

// Gain returns the raw envelope level in Q8n8.
func (v *Voice) Gain() fixmath.Q8n8 {
	return v.gain
}

// Gate reports whether a note is sounding.
func (v *Voice) Gate() bool {
	return v.gateOpen
}

// Gliding reports whether a glide is in progress.
func (v *Voice) Gliding() bool {
	return v.glideSteps > 0
}
