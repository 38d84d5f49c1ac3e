// Package synth provides a wavetable oscillator and a gliding, gated voice
// built on fixed-point phase arithmetic.
package synth

import (
	"fmt"

	"github.com/itohio/gocuttlefish/pkg/fixmath"
)

// Oscil plays a wavetable. The phase is a Q16n16 number whose integer part
// indexes the table, so a phase increment of 1.0 steps one cell per sample.
type Oscil struct {
	table     []int8
	mask      uint32
	audioRate uint32
	phase     fixmath.Q16n16
	inc       fixmath.Q16n16
}

// NewOscil creates an oscillator over table, stepped at audioRate.
// The table length must be a power of two.
func NewOscil(table []int8, audioRate uint32) *Oscil {
	n := len(table)
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("synth: table length %d is not a power of two", n))
	}
	return &Oscil{
		table:     table,
		mask:      uint32(n - 1),
		audioRate: audioRate,
	}
}

// PhaseIncFromFreq returns the phase increment that plays the table at hz.
func (o *Oscil) PhaseIncFromFreq(hz float32) fixmath.Q16n16 {
	return fixmath.Q16n16FromFloat(hz * float32(len(o.table)) / float32(o.audioRate))
}

// SetFreq sets the frequency in Hz.
func (o *Oscil) SetFreq(hz float32) {
	o.inc = o.PhaseIncFromFreq(hz)
}

// SetPhaseInc sets the phase increment directly. This is the cheap way to
// change frequency at control rate.
func (o *Oscil) SetPhaseInc(inc fixmath.Q16n16) {
	o.inc = inc
}

// PhaseInc returns the current phase increment.
func (o *Oscil) PhaseInc() fixmath.Q16n16 {
	return o.inc
}

// Freq returns the frequency in Hz.
func (o *Oscil) Freq() float32 {
	return o.inc.Float() * float32(o.audioRate) / float32(len(o.table))
}

// SetPhase sets the table position, in cells.
func (o *Oscil) SetPhase(cells fixmath.Q16n16) {
	o.phase = cells
}

// Next returns the current sample and advances the phase.
func (o *Oscil) Next() int8 {
	v := o.table[uint32(o.phase>>fixmath.Q16n16Bits)&o.mask]
	o.phase += o.inc
	return v
}
