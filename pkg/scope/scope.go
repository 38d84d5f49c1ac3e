// Package scope provides an oscilloscope-style Fyne widget for voice
// telemetry: frequency, envelope level, glide rate and detected notes.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/meter"
	"github.com/itohio/gocuttlefish/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that plots the telemetry window.
type ScopeWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu          sync.RWMutex
	notes       []meter.Note
	current     sample.Sample
	hasCurrent  bool
	scale       scale
	displayRate float64 // Largest glide rate magnitude in view

	// Display buffers (reused for downsampling)
	displaySamples     []sample.Sample
	displayDerivatives []float64

	maxDisplayPoints int
}

// scale is the plotted range. Frequency uses the Y axis; level and glide
// rate are drawn normalized over the same plot.
type scale struct {
	fMin, fMax float64
	xMin, xMax time.Time
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		window:             time.Duration(cfg.Measurement.WindowSeconds * float64(time.Second)),
		displaySamples:     make([]sample.Sample, 0, 1000),
		displayDerivatives: make([]float64, 0, 1000),
		maxDisplayPoints:   1000, // Limit points for efficient rendering
	}
	s.scale = computeScale(nil, s.window, time.Now())
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with a new window.
// This should be called from the meter callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, derivatives []float64, notes []meter.Note) {
	s.mu.Lock()

	s.displaySamples = sample.Downsample(s.displaySamples, samples, s.maxDisplayPoints)
	s.displayDerivatives = sample.Downsample(s.displayDerivatives, derivatives, s.maxDisplayPoints)
	s.notes = notes
	s.hasCurrent = len(samples) > 0
	if s.hasCurrent {
		s.current = samples[len(samples)-1]
	}
	s.scale = computeScale(s.displaySamples, s.window, time.Now())
	s.displayRate = maxAbs(s.displayDerivatives)

	s.mu.Unlock()

	// Refresh outside the lock
	s.Refresh()
}

// computeScale finds the frequency range with a 10% margin and a time range
// at least window wide.
func computeScale(samples []sample.Sample, window time.Duration, now time.Time) scale {
	if len(samples) == 0 {
		return scale{fMin: 0, fMax: 1000, xMin: now, xMax: now.Add(window)}
	}

	sc := scale{fMin: samples[0].Freq, fMax: samples[0].Freq}
	for _, s := range samples {
		sc.fMin = min(sc.fMin, s.Freq)
		sc.fMax = max(sc.fMax, s.Freq)
	}

	span := sc.fMax - sc.fMin
	if span == 0 {
		span = max(sc.fMax, 1)
	}
	margin := span * 0.1
	sc.fMin = max(0, sc.fMin-margin)
	sc.fMax += margin

	sc.xMin = samples[0].Timestamp
	sc.xMax = samples[len(samples)-1].Timestamp
	if sc.xMax.Sub(sc.xMin) < window {
		sc.xMax = sc.xMin.Add(window)
	}
	return sc
}

func maxAbs(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v < 0 {
			v = -v
		}
		m = max(m, v)
	}
	return m
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
