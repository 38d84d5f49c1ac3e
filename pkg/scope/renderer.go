package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gocuttlefish/pkg/meter"
	"github.com/itohio/gocuttlefish/pkg/sample"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	freqColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	levelColor = color.RGBA{R: 80, G: 200, B: 120, A: 255}  // Green
	rateColor  = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	noteColor  = color.RGBA{R: 0, G: 100, B: 200, A: 255}   // Dark blue
	infoColor  = color.RGBA{R: 200, G: 200, B: 200, A: 255} // Light gray
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plot is the drawing area inside the axes.
type plot struct {
	x, y, w, h float32
	sc         scale
}

// xAt maps a timestamp to a horizontal position.
func (p plot) xAt(t time.Time) float32 {
	span := p.sc.xMax.Sub(p.sc.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(t.Sub(p.sc.xMin).Seconds()/span)*p.w
}

// yAt maps v in [lo, hi] to a vertical position, hi at the top.
func (p plot) yAt(v, lo, hi float64) float32 {
	if hi <= lo {
		return p.y + p.h
	}
	return p.y + p.h - float32((v-lo)/(hi-lo))*p.h
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		// Redraw with the new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds all canvas objects.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	derivatives := r.scope.displayDerivatives
	notes := r.scope.notes
	current, hasCurrent := r.scope.current, r.scope.hasCurrent
	sc := r.scope.scale
	rate := r.scope.displayRate
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	const (
		marginLeft   = 60
		marginRight  = 20
		marginTop    = 20
		marginBottom = 40
	)
	p := plot{
		x:  marginLeft,
		y:  marginTop,
		w:  size.Width - marginLeft - marginRight,
		h:  size.Height - marginTop - marginBottom,
		sc: sc,
	}

	r.drawGrid(p)
	r.drawNotes(p, notes, samples)

	if len(samples) > 1 {
		r.drawTrace(p, samples, freqColor, 1.5, func(s sample.Sample) float32 {
			return p.yAt(s.Freq, sc.fMin, sc.fMax)
		})
		r.drawTrace(p, samples, levelColor, 1, func(s sample.Sample) float32 {
			return p.yAt(s.Level, 0, 1)
		})
	}
	if len(derivatives) > 0 && len(samples) > 1 && rate > 0 {
		r.drawRate(p, derivatives, samples, rate)
	}

	if hasCurrent {
		r.drawInfo(p, current)
	}
}

// drawGrid draws the oscilloscope-style grid with frequency and time labels.
func (r *scopeRenderer) drawGrid(p plot) {
	const numHLines = 8
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/numHLines
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		value := p.sc.fMax - float64(i)*(p.sc.fMax-p.sc.fMin)/numHLines
		r.addText(formatFreq(value), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
	}

	const numVLines = 10
	span := p.sc.xMax.Sub(p.sc.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/numVLines
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		offset := span * time.Duration(i) / numVLines
		r.addText(formatTime(offset), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.h+5))
	}
}

// drawTrace draws connected segments through samples.
func (r *scopeRenderer) drawTrace(p plot, samples []sample.Sample, c color.Color, width float32, y func(sample.Sample) float32) {
	prev := fyne.NewPos(p.xAt(samples[0].Timestamp), y(samples[0]))
	for _, s := range samples[1:] {
		pos := fyne.NewPos(p.xAt(s.Timestamp), y(s))
		r.addLine(c, width, prev, pos)
		prev = pos
	}
}

// drawRate draws the glide rate around the vertical center, scaled so the
// largest magnitude reaches a quarter of the plot height.
func (r *scopeRenderer) drawRate(p plot, derivatives []float64, samples []sample.Sample, rate float64) {
	mid := p.y + p.h/2
	var prev fyne.Position
	for i, d := range derivatives {
		if i+1 >= len(samples) {
			break
		}
		// Derivatives sit between their sample pair
		t := samples[i].Timestamp.Add(samples[i+1].Timestamp.Sub(samples[i].Timestamp) / 2)
		pos := fyne.NewPos(p.xAt(t), mid-float32(d/rate)*p.h/4)
		if i > 0 {
			r.addLine(rateColor, 2.5, prev, pos)
		}
		prev = pos
	}
}

// drawNotes marks note boundaries and labels each note with its pitch.
func (r *scopeRenderer) drawNotes(p plot, notes []meter.Note, samples []sample.Sample) {
	if len(samples) == 0 {
		return
	}
	for _, n := range notes {
		if n.EndTime.Before(p.sc.xMin) {
			continue
		}
		xStart := p.xAt(n.StartTime)
		xEnd := p.xAt(n.EndTime)
		r.addLine(noteColor, 1, fyne.NewPos(xStart, p.y), fyne.NewPos(xStart, p.y+p.h))
		if !n.Active {
			r.addLine(noteColor, 1, fyne.NewPos(xEnd, p.y), fyne.NewPos(xEnd, p.y+p.h))
		}

		center := (xStart + xEnd) / 2
		r.addText(noteLabel(n), freqColor, 12, fyne.TextAlignCenter, fyne.NewPos(center-30, p.y+5))
	}
}

// drawInfo shows the latest frequency and level.
func (r *scopeRenderer) drawInfo(p plot, s sample.Sample) {
	text := fmt.Sprintf("%s  level %.0f%%", formatFreq(s.Freq), s.Level*100)
	if s.Gate {
		text += "  gate"
	}
	r.addText(text, infoColor, 11, fyne.TextAlignLeading, fyne.NewPos(p.x+10, p.y+p.h-20))
}

func (r *scopeRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) addText(s string, c color.Color, size float32, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatFreq(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2fkHz", hz/1000)
	}
	return fmt.Sprintf("%.1fHz", hz)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// noteLabel names the pitch, or the glide when the pitch moved.
func noteLabel(n meter.Note) string {
	if diff := n.EndFreq - n.StartFreq; diff > 0.5 || diff < -0.5 {
		return fmt.Sprintf("%.0f→%.0fHz", n.StartFreq, n.EndFreq)
	}
	return fmt.Sprintf("%.0fHz", n.EndFreq)
}
