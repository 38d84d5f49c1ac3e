package sample

import (
	"testing"
	"time"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSample(t *testing.T) {
	cfg := config.Default()
	now := time.Now()

	tests := []struct {
		name string
		in   link.Telemetry
		want Sample
	}{
		{
			name: "silence",
			in:   link.Telemetry{Timestamp: now, Freq: 220, Level: 0, Duty: 244},
			want: Sample{Timestamp: now, Freq: 220, Level: 0, Output: 0},
		},
		{
			name: "full level at top of range",
			in:   link.Telemetry{Timestamp: now, Freq: 440, Level: 256, Duty: 488, Gate: true},
			want: Sample{Timestamp: now, Freq: 440, Level: 1, Output: 1, Gate: true},
		},
		{
			name: "half level below bias",
			in:   link.Telemetry{Timestamp: now, Freq: 110.5, Level: 128, Duty: 122, Gate: true},
			want: Sample{Timestamp: now, Freq: 110.5, Level: 0.5, Output: -0.5, Gate: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertSample(tt.in, &cfg.Audio)
			assert.Equal(t, tt.want.Timestamp, got.Timestamp)
			assert.InDelta(t, tt.want.Freq, got.Freq, 1e-6)
			assert.InDelta(t, tt.want.Level, got.Level, 1e-6)
			assert.InDelta(t, tt.want.Output, got.Output, 1e-6)
			assert.Equal(t, tt.want.Gate, got.Gate)
		})
	}
}

func TestConvertSample_CustomRange(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.PWMResolution = 1000
	cfg.Audio.Bias = 500

	got := convertSample(link.Telemetry{Duty: 750}, &cfg.Audio)
	assert.InDelta(t, 0.5, got.Output, 1e-6)
}

func TestNewConverter(t *testing.T) {
	converter := NewConverter(config.Default(), 10)
	in := make(chan link.Telemetry, 10)
	out := converter(in)

	now := time.Now()
	for i := 0; i < 3; i++ {
		in <- link.Telemetry{
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
			Freq:      float32(220 + i),
			Level:     256,
			Duty:      244,
			Gate:      true,
		}
	}
	close(in)

	var samples []Sample
	for s := range out {
		samples = append(samples, s)
	}
	require.Len(t, samples, 3)
	for i, s := range samples {
		assert.Equal(t, now.Add(time.Duration(i)*time.Millisecond), s.Timestamp)
		assert.InDelta(t, 220+float64(i), s.Freq, 1e-6)
		assert.Equal(t, 1.0, s.Level)
		assert.True(t, s.Gate)
	}
}

func TestNewConverter_DefaultBuffer(t *testing.T) {
	converter := NewConverter(config.Default(), 0)
	in := make(chan link.Telemetry)
	out := converter(in)
	close(in)

	_, ok := <-out
	assert.False(t, ok)
}
