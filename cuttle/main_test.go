package main

import (
	"testing"
	"time"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice_Serial(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.Port = "/dev/null-port"

	dev, err := newDevice(cfg, false)
	require.NoError(t, err)
	assert.IsType(t, &link.Serial{}, dev)
	assert.False(t, dev.IsConnected())
}

func TestNewDevice_Sim(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Backend = "none"
	cfg.Voice.Waveform = "saw"
	cfg.Sim.Tick = 5 * time.Millisecond

	dev, err := newDevice(cfg, true)
	require.NoError(t, err)
	require.IsType(t, &link.Sim{}, dev)

	require.NoError(t, dev.Connect())
	defer dev.Close()

	require.NoError(t, dev.Note(100*time.Millisecond))

	select {
	case tl, ok := <-dev.Samples():
		require.True(t, ok)
		assert.InDelta(t, 220, tl.Freq, 0.01)
	case <-time.After(2 * time.Second):
		t.Fatal("no telemetry from simulated device")
	}
}

func TestNewDevice_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Backend = "alsa"

	_, err := newDevice(cfg, true)
	assert.Error(t, err)
}

func TestParseFreq(t *testing.T) {
	tests := []struct {
		in      string
		want    float32
		wantErr bool
	}{
		{"440", 440, false},
		{" 220.5 ", 220.5, false},
		{"110Hz", 110, false},
		{"55 hz", 55, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseFreq(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestThrottle(t *testing.T) {
	now := time.Unix(1000, 0)
	th := newThrottle(16 * time.Millisecond)
	th.now = func() time.Time { return now }

	assert.True(t, th.ready(), "first event passes")
	assert.False(t, th.ready(), "same instant is throttled")

	now = now.Add(10 * time.Millisecond)
	assert.False(t, th.ready())

	now = now.Add(6 * time.Millisecond)
	assert.True(t, th.ready(), "interval elapsed")
	assert.False(t, th.ready())
}

func TestTeeChannel(t *testing.T) {
	in := make(chan link.Telemetry)
	a, b := teeChannel(in, 4)

	go func() {
		for i := range 3 {
			in <- link.Telemetry{Level: uint16(i)}
		}
		close(in)
	}()

	var gotA, gotB []uint16
	for a != nil || b != nil {
		select {
		case tl, ok := <-a:
			if !ok {
				a = nil
				continue
			}
			gotA = append(gotA, tl.Level)
		case tl, ok := <-b:
			if !ok {
				b = nil
				continue
			}
			gotB = append(gotB, tl.Level)
		}
	}

	assert.Equal(t, []uint16{0, 1, 2}, gotA)
	assert.Equal(t, []uint16{0, 1, 2}, gotB)
}
