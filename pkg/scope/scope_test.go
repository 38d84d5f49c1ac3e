package scope

import (
	"testing"
	"time"

	"github.com/itohio/gocuttlefish/pkg/meter"
	"github.com/itohio/gocuttlefish/pkg/sample"
	"github.com/stretchr/testify/assert"
)

func TestComputeScale_Empty(t *testing.T) {
	now := time.Now()
	sc := computeScale(nil, 10*time.Second, now)
	assert.Equal(t, 0.0, sc.fMin)
	assert.Equal(t, 1000.0, sc.fMax)
	assert.Equal(t, now, sc.xMin)
	assert.Equal(t, now.Add(10*time.Second), sc.xMax)
}

func TestComputeScale(t *testing.T) {
	now := time.Now()
	samples := []sample.Sample{
		{Timestamp: now, Freq: 200},
		{Timestamp: now.Add(time.Second), Freq: 400},
		{Timestamp: now.Add(2 * time.Second), Freq: 300},
	}

	sc := computeScale(samples, 10*time.Second, now)
	assert.InDelta(t, 180, sc.fMin, 1e-9)
	assert.InDelta(t, 420, sc.fMax, 1e-9)
	assert.Equal(t, now, sc.xMin)
	// Short data still spans the whole window
	assert.Equal(t, now.Add(10*time.Second), sc.xMax)

	sc = computeScale(samples, time.Second, now)
	assert.Equal(t, now.Add(2*time.Second), sc.xMax)
}

func TestComputeScale_Flat(t *testing.T) {
	now := time.Now()
	sc := computeScale([]sample.Sample{{Timestamp: now, Freq: 440}}, time.Second, now)
	assert.InDelta(t, 396, sc.fMin, 1e-9)
	assert.InDelta(t, 484, sc.fMax, 1e-9)

	// Never below zero
	sc = computeScale([]sample.Sample{{Timestamp: now, Freq: 0}}, time.Second, now)
	assert.Equal(t, 0.0, sc.fMin)
	assert.Greater(t, sc.fMax, 0.0)
}

func TestPlotMapping(t *testing.T) {
	now := time.Now()
	p := plot{x: 10, y: 20, w: 100, h: 50, sc: scale{xMin: now, xMax: now.Add(10 * time.Second)}}

	assert.Equal(t, float32(10), p.xAt(now))
	assert.Equal(t, float32(60), p.xAt(now.Add(5*time.Second)))
	assert.Equal(t, float32(110), p.xAt(now.Add(10*time.Second)))

	assert.Equal(t, float32(70), p.yAt(0, 0, 1))
	assert.Equal(t, float32(20), p.yAt(1, 0, 1))
	assert.Equal(t, float32(45), p.yAt(0.5, 0, 1))
	// Degenerate ranges sit on the bottom edge
	assert.Equal(t, float32(70), p.yAt(5, 1, 1))

	p.sc.xMax = now
	assert.Equal(t, float32(10), p.xAt(now.Add(time.Second)))
}

func TestMaxAbs(t *testing.T) {
	assert.Equal(t, 0.0, maxAbs(nil))
	assert.Equal(t, 300.0, maxAbs([]float64{100, -300, 200}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "440.0Hz", formatFreq(440))
	assert.Equal(t, "1.50kHz", formatFreq(1500))
	assert.Equal(t, "0.50s", formatTime(500*time.Millisecond))
	assert.Equal(t, "2.5s", formatTime(2500*time.Millisecond))

	assert.Equal(t, "440Hz", noteLabel(meter.Note{StartFreq: 440, EndFreq: 440.2}))
	assert.Equal(t, "220→440Hz", noteLabel(meter.Note{StartFreq: 220, EndFreq: 440}))
}
