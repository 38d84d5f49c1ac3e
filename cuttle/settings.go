package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocuttlefish/pkg/link"
	"github.com/itohio/gocuttlefish/pkg/meter"
)

var waveforms = []string{"sin", "triangle", "saw", "square"}

var backends = []string{"oto", "none"}

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createAudioTab(state),
		createVoiceTab(state),
		createOutputTab(state),
		createMeasurementTab(state),
		createSimTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig writes the configuration back to the file it was loaded from.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// reconnect restarts the device so that changed settings take effect.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	disconnect(state)
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			changed := false
			if portSelect.Selected != "" && portSelect.Selected != state.cfg.Serial.Port {
				state.cfg.Serial.Port = portSelect.Selected
				changed = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 && baud != state.cfg.Serial.BaudRate {
				state.cfg.Serial.BaudRate = baud
				changed = true
			}
			saveConfig(state)

			if changed && !state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createAudioTab creates the engine rate and PWM range tab.
func createAudioTab(state *appState) *container.TabItem {
	audioRateEntry := widget.NewEntry()
	audioRateEntry.SetText(strconv.FormatUint(uint64(state.cfg.Audio.AudioRate), 10))

	controlRateEntry := widget.NewEntry()
	controlRateEntry.SetText(strconv.FormatUint(uint64(state.cfg.Audio.ControlRate), 10))

	resolutionEntry := widget.NewEntry()
	resolutionEntry.SetText(strconv.FormatUint(uint64(state.cfg.Audio.PWMResolution), 10))

	biasEntry := widget.NewEntry()
	biasEntry.SetText(strconv.FormatUint(uint64(state.cfg.Audio.Bias), 10))

	bufferEntry := widget.NewEntry()
	bufferEntry.SetText(strconv.Itoa(state.cfg.Audio.BufferSize))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Audio Rate (Hz)", Widget: audioRateEntry},
			{Text: "Control Rate (Hz)", Widget: controlRateEntry},
			{Text: "PWM Resolution", Widget: resolutionEntry},
			{Text: "Bias", Widget: biasEntry},
			{Text: "Buffer Size (samples)", Widget: bufferEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseUint(audioRateEntry.Text, 10, 32); err == nil && v > 0 {
				state.cfg.Audio.AudioRate = uint32(v)
			}
			if v, err := strconv.ParseUint(controlRateEntry.Text, 10, 32); err == nil && v > 0 {
				state.cfg.Audio.ControlRate = uint32(v)
			}
			if v, err := strconv.ParseUint(resolutionEntry.Text, 10, 16); err == nil && v > 0 {
				state.cfg.Audio.PWMResolution = uint16(v)
			}
			if v, err := strconv.ParseUint(biasEntry.Text, 10, 16); err == nil {
				state.cfg.Audio.Bias = uint16(v)
			}
			if v, err := strconv.Atoi(bufferEntry.Text); err == nil && v > 0 {
				state.cfg.Audio.BufferSize = v
			}
			saveConfig(state)

			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Audio", form)
}

// createVoiceTab creates the waveform, glide and envelope tab.
func createVoiceTab(state *appState) *container.TabItem {
	waveformSelect := widget.NewSelect(waveforms, nil)
	waveformSelect.SetSelected(state.cfg.Voice.Waveform)

	startFreqEntry := widget.NewEntry()
	startFreqEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Voice.StartFreq))

	glideEntry := widget.NewEntry()
	glideEntry.SetText(state.cfg.Voice.Glide.String())

	attackEntry := widget.NewEntry()
	attackEntry.SetText(state.cfg.Voice.Attack.String())

	releaseEntry := widget.NewEntry()
	releaseEntry.SetText(state.cfg.Voice.Release.String())

	noteEntry := widget.NewEntry()
	noteEntry.SetText(state.cfg.Voice.Note.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Waveform", Widget: waveformSelect},
			{Text: "Start Frequency (Hz)", Widget: startFreqEntry},
			{Text: "Glide Time", Widget: glideEntry},
			{Text: "Attack", Widget: attackEntry},
			{Text: "Release", Widget: releaseEntry},
			{Text: "Note Length", Widget: noteEntry},
		},
		OnSubmit: func() {
			if waveformSelect.Selected != "" {
				state.cfg.Voice.Waveform = waveformSelect.Selected
			}
			if f, err := parseFreq(startFreqEntry.Text); err == nil && f > 0 {
				state.cfg.Voice.StartFreq = f
			}
			if d, err := time.ParseDuration(glideEntry.Text); err == nil && d >= 0 {
				state.cfg.Voice.Glide = d
			}
			if d, err := time.ParseDuration(attackEntry.Text); err == nil && d >= 0 {
				state.cfg.Voice.Attack = d
			}
			if d, err := time.ParseDuration(releaseEntry.Text); err == nil && d >= 0 {
				state.cfg.Voice.Release = d
			}
			if d, err := time.ParseDuration(noteEntry.Text); err == nil && d >= 0 {
				state.cfg.Voice.Note = d
			}
			saveConfig(state)

			// Glide and note lengths are read per command; the rest shapes the voice
			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Voice", form)
}

// createOutputTab creates the simulated audio output tab.
func createOutputTab(state *appState) *container.TabItem {
	backendSelect := widget.NewSelect(backends, nil)
	backendSelect.SetSelected(state.cfg.Output.Backend)

	volumeSlider := widget.NewSlider(0, 100)
	volumeSlider.Step = 1
	volumeSlider.SetValue(float64(state.cfg.Output.Volume))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Backend", Widget: backendSelect},
			{Text: "Volume", Widget: volumeSlider},
		},
		OnSubmit: func() {
			if backendSelect.Selected != "" {
				state.cfg.Output.Backend = backendSelect.Selected
			}
			state.cfg.Output.Volume = int(volumeSlider.Value)
			saveConfig(state)

			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Output", form)
}

// createMeasurementTab creates the Measurement configuration tab.
func createMeasurementTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Measurement.WindowSeconds))

	noteThresholdEntry := widget.NewEntry()
	noteThresholdEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Measurement.NoteThreshold))

	minNoteDurationEntry := widget.NewEntry()
	minNoteDurationEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Measurement.MinNoteDuration))

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(fmt.Sprintf("%d", state.cfg.Measurement.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Note Threshold (0-1)", Widget: noteThresholdEntry},
			{Text: "Min Note Duration (s)", Widget: minNoteDurationEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Measurement.WindowSeconds = ws
			}
			if nt, err := strconv.ParseFloat(noteThresholdEntry.Text, 64); err == nil {
				state.cfg.Measurement.NoteThreshold = nt
			}
			if mnd, err := strconv.ParseFloat(minNoteDurationEntry.Text, 64); err == nil {
				state.cfg.Measurement.MinNoteDuration = mnd
			}
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil && avg >= 0 {
				state.cfg.Measurement.AverageSamples = avg
			}
			saveConfig(state)

			// The running chain holds the old meter
			wasConnected := state.device != nil && state.device.IsConnected()
			if wasConnected {
				disconnect(state)
			}
			state.meter = meter.New(state.cfg)
			if wasConnected {
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Measurement", form)
}

// createSimTab creates the simulated device tab.
func createSimTab(state *appState) *container.TabItem {
	tickEntry := widget.NewEntry()
	tickEntry.SetText(state.cfg.Sim.Tick.String())

	bufferEntry := widget.NewEntry()
	bufferEntry.SetText(strconv.Itoa(state.cfg.Sim.TelemetryBuffer))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Render Tick", Widget: tickEntry},
			{Text: "Telemetry Buffer", Widget: bufferEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(tickEntry.Text); err == nil && d > 0 {
				state.cfg.Sim.Tick = d
			}
			if n, err := strconv.Atoi(bufferEntry.Text); err == nil && n > 0 {
				state.cfg.Sim.TelemetryBuffer = n
			}
			saveConfig(state)

			if state.useSim {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Sim", form)
}
