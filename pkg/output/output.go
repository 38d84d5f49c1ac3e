// Package output turns PWM duty samples into sound or stores them for
// inspection.
package output

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("output closed")

// Sink consumes PWM duty values at the audio rate.
type Sink interface {
	// Write outputs duty samples (may block until written)
	Write(duties []uint16) error

	// Close releases output resources
	Close() error
}

// DutyToFloat maps a duty value to [-1, 1] around bias. The wider side of
// the PWM range sets the scale so that neither extreme clips.
func DutyToFloat(duty, bias, resolution uint16) float32 {
	span := bias
	if resolution-bias > span {
		span = resolution - bias
	}
	if span == 0 {
		return 0
	}
	v := (float32(duty) - float32(bias)) / float32(span)
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Recorder is a Sink that keeps everything written to it.
type Recorder struct {
	mu     sync.Mutex
	duties []uint16
	writes int
	closed bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write appends a copy of duties.
func (r *Recorder) Write(duties []uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.duties = append(r.duties, duties...)
	r.writes++
	return nil
}

// Close stops accepting writes.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Duties returns a copy of the recorded samples.
func (r *Recorder) Duties() []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint16, len(r.duties))
	copy(out, r.duties)
	return out
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.duties)
}

// Writes returns the number of Write calls accepted.
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Write([]uint16) error { return nil }
func (Discard) Close() error         { return nil }

// Options selects and configures a sink.
type Options struct {
	Backend    string // "oto" or "none"
	SampleRate int
	Resolution uint16
	Bias       uint16
	Volume     int
}

// Open creates the sink named by opts.Backend.
func Open(opts Options) (Sink, error) {
	switch opts.Backend {
	case "oto":
		o, err := NewOto(opts.SampleRate, opts.Resolution, opts.Bias, opts.Volume)
		if err != nil {
			return nil, err
		}
		return o, nil
	case "none", "":
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown output backend %q", opts.Backend)
	}
}
