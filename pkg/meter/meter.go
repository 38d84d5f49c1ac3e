// Package meter keeps a time window of voice telemetry, the glide rate
// between consecutive samples and the notes heard in it.
package meter

import (
	"sync"
	"time"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/sample"
)

var _ Analyzer = (*Meter)(nil)

// Note is a stretch of samples with the level above the note threshold.
type Note struct {
	StartIndex int       // Start sample index in buffer
	EndIndex   int       // End sample index in buffer (updated while the note sounds)
	StartTime  time.Time // Start timestamp
	EndTime    time.Time // End timestamp (updated while the note sounds)
	StartFreq  float64   // Frequency at the start (Hz)
	EndFreq    float64   // Latest frequency (Hz)
	Peak       float64   // Highest level seen
	Active     bool      // Still sounding
}

// Duration returns how long the note has lasted.
func (n Note) Duration() time.Duration {
	return n.EndTime.Sub(n.StartTime)
}

// UpdateFunc receives the window after each sample.
type UpdateFunc func(samples []sample.Sample, derivatives []float64, notes []Note)

// Analyzer processes samples, maintains buffers, and detects notes.
type Analyzer interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample // Current samples buffer (FIFO, ordered first to last)
	Derivatives() []float64   // Glide rate in Hz/s (n-1 derivatives for n samples)
	Notes() []Note            // Detected notes within window
	OnUpdate(UpdateFunc)      // Register callback for updates
}

// Meter implements Analyzer.
type Meter struct {
	// Samples and derivatives are ordered oldest first and trimmed by
	// timestamp. derivative[i] = (sample[i+1].Freq - sample[i].Freq) / dt.
	samples     []sample.Sample
	derivatives []float64
	notes       []Note
	active      int // Index of the sounding note in notes, or -1

	mu sync.RWMutex

	callbacks []UpdateFunc
	cbMu      sync.RWMutex

	windowDuration  time.Duration
	threshold       float64
	minNoteDuration time.Duration

	// Set when the input channel closes; no callbacks after that
	shutdown bool
}

// New creates a new Meter.
func New(cfg *config.Config) *Meter {
	return &Meter{
		active:          -1,
		windowDuration:  time.Duration(cfg.Measurement.WindowSeconds * float64(time.Second)),
		threshold:       cfg.Measurement.NoteThreshold,
		minNoteDuration: time.Duration(cfg.Measurement.MinNoteDuration * float64(time.Second)),
	}
}

// ProcessSamples consumes the input channel until it closes. After that no
// more callbacks are sent.
func (m *Meter) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample adds a sample to the buffer, updates derivatives and notes,
// then notifies callbacks.
func (m *Meter) processSample(s sample.Sample) {
	if m.addSample(s) {
		m.notifyCallbacks()
	}
}

// addSample updates the buffers and reports whether callbacks should run.
func (m *Meter) addSample(s sample.Sample) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples = append(m.samples, s)
	m.trim(s.Timestamp.Add(-m.windowDuration))

	if n := len(m.samples); n >= 2 {
		prev, curr := m.samples[n-2], m.samples[n-1]
		dt := curr.Timestamp.Sub(prev.Timestamp).Seconds()
		var rate float64
		if dt > 0 {
			rate = (curr.Freq - prev.Freq) / dt
		}
		m.derivatives = append(m.derivatives, rate)
	}

	m.updateNotes()

	return !m.shutdown
}

// trim drops samples at or before cutoff together with their derivatives
// and shifts note indices.
func (m *Meter) trim(cutoff time.Time) {
	cut := 0
	for cut < len(m.samples)-1 && !m.samples[cut].Timestamp.After(cutoff) {
		cut++
	}
	if cut == 0 {
		return
	}

	m.samples = m.samples[cut:]
	if cut <= len(m.derivatives) {
		m.derivatives = m.derivatives[cut:]
	} else {
		m.derivatives = m.derivatives[:0]
	}

	kept := m.notes[:0]
	active := -1
	for i, n := range m.notes {
		n.StartIndex -= cut
		n.EndIndex -= cut
		if n.EndIndex < 0 {
			continue
		}
		if n.StartIndex < 0 {
			n.StartIndex = 0
		}
		if i == m.active {
			active = len(kept)
		}
		kept = append(kept, n)
	}
	m.notes = kept
	m.active = active
}

// updateNotes extends, starts or ends a note based on the latest level.
func (m *Meter) updateNotes() {
	idx := len(m.samples) - 1
	s := m.samples[idx]
	sounding := s.Level > m.threshold

	switch {
	case sounding && m.active >= 0:
		n := &m.notes[m.active]
		n.EndIndex = idx
		n.EndTime = s.Timestamp
		n.EndFreq = s.Freq
		n.Peak = max(n.Peak, s.Level)

	case sounding:
		m.notes = append(m.notes, Note{
			StartIndex: idx,
			EndIndex:   idx,
			StartTime:  s.Timestamp,
			EndTime:    s.Timestamp,
			StartFreq:  s.Freq,
			EndFreq:    s.Freq,
			Peak:       s.Level,
			Active:     true,
		})
		m.active = len(m.notes) - 1

	case m.active >= 0:
		n := &m.notes[m.active]
		n.Active = false
		m.active = -1
		// Filter out clicks
		if n.Duration() < m.minNoteDuration {
			m.notes = m.notes[:len(m.notes)-1]
		}
	}
}

// Samples returns a copy of the current samples buffer.
func (m *Meter) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Derivatives returns a copy of the current glide rates.
func (m *Meter) Derivatives() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]float64, len(m.derivatives))
	copy(result, m.derivatives)
	return result
}

// Notes returns a copy of the current notes list.
func (m *Meter) Notes() []Note {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Note, len(m.notes))
	copy(result, m.notes)
	return result
}

// OnUpdate registers a callback that is called after every sample with
// copies of the window. The callback should return quickly.
func (m *Meter) OnUpdate(callback UpdateFunc) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown allows callbacks again. Call it before starting a new
// processing chain.
func (m *Meter) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// Reset clears all buffers.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = m.samples[:0]
	m.derivatives = m.derivatives[:0]
	m.notes = m.notes[:0]
	m.active = -1
}

// notifyCallbacks copies the buffers under the read lock and invokes the
// callbacks without holding any lock.
func (m *Meter) notifyCallbacks() {
	m.mu.RLock()
	samplesCopy := make([]sample.Sample, len(m.samples))
	copy(samplesCopy, m.samples)
	derivativesCopy := make([]float64, len(m.derivatives))
	copy(derivativesCopy, m.derivatives)
	notesCopy := make([]Note, len(m.notes))
	copy(notesCopy, m.notes)
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, derivativesCopy, notesCopy)
		}
	}
}
