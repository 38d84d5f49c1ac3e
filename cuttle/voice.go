package main

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocuttlefish/pkg/link"
)

// handleGlide sends a glide to the frequency typed in the toolbar entry.
func handleGlide(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}

	hz, err := parseFreq(state.freqEntry.Text)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	if err := state.device.Glide(hz, state.cfg.Voice.Glide); err != nil {
		dialog.ShowError(fmt.Errorf("failed to glide: %w", err), state.window)
	}
}

// handleNote opens the gate for the configured note length.
func handleNote(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}

	if err := state.device.Note(state.cfg.Voice.Note); err != nil {
		dialog.ShowError(fmt.Errorf("failed to start note: %w", err), state.window)
		return
	}

	// Optimistic update, telemetry confirms it
	setGate(state, true)
}

// parseFreq parses a non-negative frequency in Hz. A trailing "Hz" is allowed.
func parseFreq(s string) (float32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "Hz"), "hz"))
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("frequency must not be negative: %v", f)
	}
	return float32(f), nil
}

// updateGateFromTelemetry updates the note button from incoming telemetry.
// Only updates UI when the gate actually changes.
func updateGateFromTelemetry(state *appState, t link.Telemetry) {
	state.gateMu.Lock()
	changed := state.gate != t.Gate
	state.gate = t.Gate
	state.gateMu.Unlock()

	if !changed {
		return
	}

	fyne.Do(func() {
		updateNoteButton(state.noteBtn, t.Gate)
	})
}

// setGate records the gate state and refreshes the note button. Must be
// called on the main thread.
func setGate(state *appState, on bool) {
	state.gateMu.Lock()
	state.gate = on
	state.gateMu.Unlock()

	updateNoteButton(state.noteBtn, on)
}

// updateNoteButton highlights the note button while the gate is open.
func updateNoteButton(btn *widget.Button, gate bool) {
	if btn == nil {
		return
	}
	if gate {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
