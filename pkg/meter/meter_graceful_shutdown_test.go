package meter

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/sample"
	"github.com/stretchr/testify/assert"
)

// TestMeter_GracefulShutdown_NoCallbacksAfterClose tests that meter stops sending
// callbacks after the input channel is closed.
func TestMeter_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	cfg := &config.Config{
		Measurement: config.MeasurementConfig{
			WindowSeconds:   10.0,
			NoteThreshold:   0.001,
			MinNoteDuration: 1.0,
		},
	}

	m := New(cfg)

	var callbackCount atomic.Int32
	callbackReceived := make(chan struct{}, 10)

	m.OnUpdate(func(samples []sample.Sample, derivatives []float64, notes []Note) {
		callbackCount.Add(1)
		select {
		case callbackReceived <- struct{}{}:
		default:
		}
	})

	// Create input channel and send some samples
	input := make(chan sample.Sample, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(input)
	}()

	now := time.Now()
	for i := 0; i < 3; i++ {
		input <- sample.Sample{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			Freq:      220 + float64(i)*10,
		}
	}

	// Close the channel and wait for ProcessSamples to finish
	close(input)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessSamples did not finish within timeout")
	}
	assert.Equal(t, int32(3), callbackCount.Load())

	// Processing another chain without ResetShutdown sends no callbacks
	newInput := make(chan sample.Sample, 1)
	newInput <- sample.Sample{
		Timestamp: now.Add(5 * time.Second),
		Freq:      440,
	}
	close(newInput)
	m.ProcessSamples(newInput)

	assert.Equal(t, int32(3), callbackCount.Load(), "No callbacks should be sent after channel closes")
	// The sample is still recorded
	assert.Len(t, m.Samples(), 4)
}

// TestMeter_ResetShutdown tests that ResetShutdown allows callbacks again.
func TestMeter_ResetShutdown(t *testing.T) {
	cfg := &config.Config{
		Measurement: config.MeasurementConfig{
			WindowSeconds:   10.0,
			NoteThreshold:   0.001,
			MinNoteDuration: 1.0,
		},
	}

	m := New(cfg)

	callbackCount := 0
	callbackMu := &sync.Mutex{}
	m.OnUpdate(func(samples []sample.Sample, derivatives []float64, notes []Note) {
		callbackMu.Lock()
		callbackCount++
		callbackMu.Unlock()
	})

	// First chain - send and close
	input1 := make(chan sample.Sample, 10)
	done1 := make(chan struct{})
	go func() {
		defer close(done1)
		m.ProcessSamples(input1)
	}()

	// Send sample with enough time difference to create a derivative
	now := time.Now()
	input1 <- sample.Sample{Timestamp: now, Freq: 220}
	time.Sleep(100 * time.Millisecond)
	input1 <- sample.Sample{Timestamp: now.Add(100 * time.Millisecond), Freq: 230}
	time.Sleep(50 * time.Millisecond)

	// Close input and wait for ProcessSamples to finish
	// This ensures the goroutine has exited and shutdown flag is set
	close(input1)
	select {
	case <-done1:
		// ProcessSamples finished - shutdown flag should now be set
	case <-time.After(2 * time.Second):
		t.Fatal("First ProcessSamples did not finish within timeout")
	}

	callbackMu.Lock()
	count1 := callbackCount
	callbackMu.Unlock()

	// Reset shutdown flag (now safe since first goroutine is done and shutdown is set)
	m.ResetShutdown()

	// Second chain - should work again
	input2 := make(chan sample.Sample, 10)
	done2 := make(chan struct{})
	go func() {
		defer close(done2)
		m.ProcessSamples(input2)
	}()

	// Send sample with enough time difference to create a derivative
	now2 := time.Now()
	input2 <- sample.Sample{Timestamp: now2, Freq: 240}
	time.Sleep(100 * time.Millisecond)
	input2 <- sample.Sample{Timestamp: now2.Add(100 * time.Millisecond), Freq: 250}
	time.Sleep(50 * time.Millisecond)

	// Close input and wait for ProcessSamples to finish
	close(input2)
	select {
	case <-done2:
		// ProcessSamples finished
	case <-time.After(2 * time.Second):
		t.Fatal("Second ProcessSamples did not finish within timeout")
	}

	callbackMu.Lock()
	count2 := callbackCount
	callbackMu.Unlock()

	// Should have received more callbacks after reset
	assert.Greater(t, count2, count1, "Callbacks should resume after ResetShutdown")
}
