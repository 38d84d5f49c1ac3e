package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHooks records control calls and returns a fixed or ramping sample.
type countingHooks struct {
	controls int
	audio    int
	value    int
	ramp     bool
}

func (h *countingHooks) UpdateControl() { h.controls++ }

func (h *countingHooks) UpdateAudio() int {
	h.audio++
	if h.ramp {
		return h.audio
	}
	return h.value
}

// fakeTicker captures the tick callback instead of starting a timer.
type fakeTicker struct {
	rate uint32
	tick func()
	err  error
}

func (f *fakeTicker) ConfigurePeriodicTick(rateHz uint32, tick func()) error {
	if f.err != nil {
		return f.err
	}
	f.rate = rateHz
	f.tick = tick
	return nil
}

func TestConfig_Defaults(t *testing.T) {
	e := New(Config{}, &countingHooks{})
	cfg := e.Config()

	assert.Equal(t, uint32(AudioRate), cfg.AudioRate)
	assert.Equal(t, uint32(DefaultControlRate), cfg.ControlRate)
	assert.Equal(t, uint16(PWMResolution), cfg.Resolution)
	assert.Equal(t, uint16(Bias), cfg.Bias)
	assert.Equal(t, DefaultBufferSize, cfg.BufferSize)
	assert.Equal(t, uint32(256), e.ControlPeriod())
	assert.Equal(t, AudioRate, 1<<AudioRateShift)
}

func TestConfig_BiasFollowsResolution(t *testing.T) {
	e := New(Config{Resolution: 1000}, &countingHooks{})
	assert.Equal(t, uint16(500), e.Config().Bias)
}

func TestEngine_ControlScheduling(t *testing.T) {
	tests := []struct {
		name        string
		audioRate   uint32
		controlRate uint32
		samples     int
		controls    int
	}{
		{"first sample runs control", AudioRate, 64, 1, 1},
		{"one full period", AudioRate, 64, 256, 1},
		{"period boundary", AudioRate, 64, 257, 2},
		{"one second", AudioRate, 64, AudioRate, 64},
		{"control faster than audio", 100, 1000, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hooks := &countingHooks{}
			e := New(Config{AudioRate: tt.audioRate, ControlRate: tt.controlRate}, hooks)
			for range tt.samples {
				e.Next()
			}
			assert.Equal(t, tt.controls, hooks.controls)
			assert.Equal(t, tt.samples, hooks.audio)
			assert.Equal(t, uint64(tt.controls), e.Stats().Controls)
			assert.Equal(t, uint64(tt.samples), e.Stats().Produced)
		})
	}
}

func TestEngine_Bias(t *testing.T) {
	tests := []struct {
		name   string
		sample int
		want   uint16
	}{
		{"silence", 0, Bias},
		{"positive", 100, Bias + 100},
		{"negative", -100, Bias - 100},
		{"clamp high", 1000, PWMResolution},
		{"clamp low", -1000, 0},
		{"top edge", Bias, PWMResolution},
		{"bottom edge", -Bias, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(DefaultConfig(), &countingHooks{value: tt.sample})
			assert.Equal(t, tt.want, e.Next())
		})
	}
}

func TestEngine_Render(t *testing.T) {
	e := New(DefaultConfig(), &countingHooks{ramp: true})
	out := e.Render(make([]uint16, 4))
	assert.Equal(t, []uint16{Bias + 1, Bias + 2, Bias + 3, Bias + 4}, out)
}

func TestEngine_AudioHookAndOutput(t *testing.T) {
	hooks := &countingHooks{ramp: true}
	e := New(Config{BufferSize: 8}, hooks)

	e.AudioHook()
	require.Equal(t, 8, e.Buffered())
	require.Equal(t, 8, hooks.audio)

	// A full buffer does not call the hooks again
	e.AudioHook()
	assert.Equal(t, 8, hooks.audio)

	var written []uint16
	w := SampleWriterFunc(func(duty uint16) { written = append(written, duty) })
	for range 8 {
		e.OutputAudio(w)
	}
	assert.Equal(t, []uint16{245, 246, 247, 248, 249, 250, 251, 252}, written)

	// Underrun writes silence
	e.OutputAudio(w)
	assert.Equal(t, uint16(Bias), written[len(written)-1])

	stats := e.Stats()
	assert.Equal(t, uint64(8), stats.Consumed)
	assert.Equal(t, uint64(1), stats.Underruns)
}

func TestEngine_Start(t *testing.T) {
	e := New(DefaultConfig(), &countingHooks{value: 10})
	ticker := &fakeTicker{}

	var written []uint16
	require.NoError(t, e.Start(ticker, SampleWriterFunc(func(duty uint16) { written = append(written, duty) })))
	assert.Equal(t, uint32(AudioRate), ticker.rate)
	require.NotNil(t, ticker.tick)

	e.AudioHook()
	ticker.tick()
	ticker.tick()
	assert.Equal(t, []uint16{Bias + 10, Bias + 10}, written)
}

func TestEngine_StartError(t *testing.T) {
	e := New(DefaultConfig(), &countingHooks{})
	errTimer := errors.New("timer busy")

	err := e.Start(&fakeTicker{err: errTimer}, SampleWriterFunc(func(uint16) {}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errTimer)
}

func TestEngine_ConcurrentProducerConsumer(t *testing.T) {
	hooks := &countingHooks{ramp: true}
	e := New(Config{BufferSize: 64, Resolution: 0xffff, Bias: 1}, hooks)

	const total = 10000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for hooks.audio < total {
			e.AudioHook()
		}
	}()

	// Consumer sees strictly increasing values with no gaps
	var last uint16 = 1
	got := 0
	w := SampleWriterFunc(func(duty uint16) {
		if duty == 1 {
			return // underrun
		}
		if duty != last+1 {
			t.Errorf("expected %d, got %d", last+1, duty)
		}
		last = duty
		got++
	})
	for got < total-64 {
		e.OutputAudio(w)
	}
	wg.Wait()
}

func TestHooksFuncs(t *testing.T) {
	var h HooksFuncs
	assert.NotPanics(t, h.UpdateControl)
	assert.Equal(t, 0, h.UpdateAudio())

	calls := 0
	h = HooksFuncs{Control: func() { calls++ }, Audio: func() int { return 7 }}
	h.UpdateControl()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 7, h.UpdateAudio())
}

func TestRing(t *testing.T) {
	r := newRing(5)
	assert.Equal(t, 8, r.cap())

	for i := range 8 {
		assert.True(t, r.push(uint16(i)))
	}
	assert.False(t, r.push(99))
	assert.Equal(t, 8, r.len())

	for i := range 8 {
		v, ok := r.pop()
		require.True(t, ok)
		assert.Equal(t, uint16(i), v)
	}
	_, ok := r.pop()
	assert.False(t, ok)
}
