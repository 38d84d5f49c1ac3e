package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countFalse calls Ready until it reports true and returns how many calls
// reported false. It gives up after limit calls.
func countFalse(d *Delay, limit int) int {
	for i := 0; i < limit; i++ {
		if d.Ready() {
			return i
		}
	}
	return limit
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		rate   uint32
		micros uint32
	}{
		{"audio rate", 16384, 61},
		{"control rate", 64, 15625},
		{"one hertz", 1, 1_000_000},
		{"2048 Hz", 2048, 488},
		{"above a megahertz", 2_000_000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.rate)
			assert.Equal(t, tt.micros, d.MicrosPerUpdate())
		})
	}
}

func TestNew_ZeroRatePanics(t *testing.T) {
	assert.Panics(t, func() { New(0) })
}

func TestDelay_Scenario(t *testing.T) {
	d := New(16384)
	d.Set(100)
	require.Equal(t, int64(1639), d.Ticks())

	d.Start()
	for i := 1; i <= 1639; i++ {
		require.False(t, d.Ready(), "call %d", i)
	}
	assert.True(t, d.Ready(), "call 1640")

	// Stays expired until re-armed
	for i := 0; i < 100; i++ {
		assert.True(t, d.Ready())
	}
}

func TestDelay_Rearm(t *testing.T) {
	d := New(64)
	d.Set(500)
	require.Equal(t, int64(32), d.Ticks())

	d.Start()
	assert.Equal(t, 32, countFalse(d, 1000))
	assert.True(t, d.Ready())

	d.Start()
	assert.Equal(t, 32, countFalse(d, 1000))
}

func TestDelay_SetTakesEffectOnStart(t *testing.T) {
	d := New(1000)
	d.Set(10)
	d.Start()

	// Changing the delay does not touch a running countdown
	d.Set(1000)
	assert.Equal(t, 10, countFalse(d, 5000))

	d.Start()
	assert.Equal(t, 1000, countFalse(d, 5000))
}

func TestDelay_Zero(t *testing.T) {
	d := New(64)
	d.Set(0)
	d.Start()
	assert.True(t, d.Ready())
}

func TestDelay_NeverStarted(t *testing.T) {
	d := New(64)
	d.Set(1000)
	// Counter starts at zero, so the first Ready already expires
	assert.True(t, d.Ready())
}

func TestDelay_LongDelayNoOverflow(t *testing.T) {
	d := New(2048)
	d.Set(60_000)
	// 60 s at 2048 Hz would overflow a 16-bit counter
	assert.Equal(t, int64(60_000*1000/488), d.Ticks())

	d = New(16384)
	d.Set(^uint32(0))
	assert.Equal(t, int64(^uint32(0))*1000/61, d.Ticks())
	assert.Positive(t, d.Ticks())
}

func TestDelay_SetDuration(t *testing.T) {
	tests := []struct {
		name  string
		wait  time.Duration
		ticks int64
	}{
		{"whole millis", 250 * time.Millisecond, 250 * 1000 / 15625},
		{"sub millisecond truncates", 999 * time.Microsecond, 0},
		{"seconds", 2 * time.Second, 2000 * 1000 / 15625},
		{"negative", -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(64)
			d.SetDuration(tt.wait)
			assert.Equal(t, tt.ticks, d.Ticks())
		})
	}
}
