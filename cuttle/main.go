package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/link"
	"github.com/itohio/gocuttlefish/pkg/meter"
	"github.com/itohio/gocuttlefish/pkg/sample"
	"github.com/itohio/gocuttlefish/pkg/scope"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		simFlag            = flag.Bool("sim", false, "Render the voice on this machine instead of the serial device")
		outputFlag         = flag.String("output", "", "Simulated audio output override (oto or none)")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *outputFlag != "" {
		cfg.Output.Backend = *outputFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Measurement.AverageSamples = *averageSamplesFlag
	}

	application := app.NewWithID("com.itohio.gocuttlefish")

	window := application.NewWindow("Cuttlefish Voice")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		meter:      meter.New(cfg),
		window:     window,
		useSim:     *simFlag,
		throttle:   newThrottle(updateInterval),
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
	window.SetOnClosed(func() {
		closeChain(state.chain)
	})
	window.ShowAndRun()
}

// chain tracks the components of the telemetry chain for graceful shutdown.
type chain struct {
	device        link.Device
	gateGoroutine chan struct{} // Closed when the gate indicator goroutine exits
	samples       <-chan sample.Sample
	meterDone     chan struct{} // Closed when the meter goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      link.Device
	meter       *meter.Meter
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	glideBtn    *widget.Button
	noteBtn     *widget.Button
	freqEntry   *widget.Entry
	useSim      bool
	chain       *chain // Current chain (nil if not connected)

	gateMu sync.Mutex
	gate   bool // Last gate state seen in telemetry

	throttle *throttle
}

// createToolbar creates the toolbar with Connect and Settings on the left and
// the voice controls on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	freqEntry := widget.NewEntry()
	freqEntry.SetPlaceHolder("Hz")
	freqEntry.SetText(strconv.FormatFloat(float64(state.cfg.Voice.StartFreq), 'f', -1, 32))
	state.freqEntry = freqEntry

	glideBtn := widget.NewButtonWithIcon("Glide", theme.MediaFastForwardIcon(), func() {
		handleGlide(state)
	})
	glideBtn.Disable()
	state.glideBtn = glideBtn

	noteBtn := widget.NewButtonWithIcon("Note", theme.MediaPlayIcon(), func() {
		handleNote(state)
	})
	noteBtn.Disable()
	state.noteBtn = noteBtn

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		container.NewHBox(container.NewGridWrap(fyne.NewSize(100, freqEntry.MinSize().Height), freqEntry), glideBtn, noteBtn),
		nil,
	)
}

// closeChain closes the device and waits for every goroutine of the chain
// to drain.
func closeChain(c *chain) {
	if c == nil {
		return
	}

	// Closing the device closes its telemetry channel
	if c.device != nil {
		if err := c.device.Close(); err != nil {
			log.Printf("Error closing device: %v", err)
		}
	}

	if c.gateGoroutine != nil {
		<-c.gateGoroutine
	}

	// The meter exits once the converters drain
	if c.meterDone != nil {
		<-c.meterDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		disconnect(state)
		return
	}
	if state.chain != nil {
		// Device dropped on its own; drain the old chain first
		disconnect(state)
	}

	device, err := newDevice(state.cfg, state.useSim)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	if err := device.Connect(); err != nil {
		if state.useSim {
			dialog.ShowError(fmt.Errorf("failed to start simulated voice: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useSim {
		log.Printf("Connected to simulated voice (%s output)", state.cfg.Output.Backend)
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}

	state.connectBtn.SetIcon(theme.LogoutIcon())
	state.glideBtn.Enable()
	state.noteBtn.Enable()

	state.chain = startChain(state, device)
}

// disconnect tears down the current chain and resets the controls.
func disconnect(state *appState) {
	closeChain(state.chain)
	state.chain = nil
	state.device = nil

	state.connectBtn.SetIcon(theme.LoginIcon())
	state.glideBtn.Disable()
	state.noteBtn.Disable()
	setGate(state, false)
	log.Printf("Disconnected")
}

// startChain wires device telemetry through the converters into the meter
// and the scope.
func startChain(state *appState, device link.Device) *chain {
	state.meter.ResetShutdown()
	state.meter.OnUpdate(func(samples []sample.Sample, derivatives []float64, notes []meter.Note) {
		if !state.throttle.ready() {
			return
		}
		// Scope widget downsamples internally, so pass full data
		UpdateWidgetOnMainThread(func() {
			state.scopeWidget.UpdateData(samples, derivatives, notes)
		})
	})

	// Tee telemetry: one branch drives the gate indicator, one the converters
	telemetry, forConverter := teeChannel(device.Samples(), state.cfg.Sim.TelemetryBuffer)

	gateDone := make(chan struct{})
	meterDone := make(chan struct{})

	go func() {
		defer close(gateDone)
		for t := range telemetry {
			updateGateFromTelemetry(state, t)
		}
	}()

	convert := sample.NewConverter(state.cfg, 500)
	if n := state.cfg.Measurement.AverageSamples; n > 0 {
		convert = sample.NewAveragingConverter(state.cfg, n, 500)
	}
	samples := convert(forConverter)

	go func() {
		defer close(meterDone)
		state.meter.ProcessSamples(samples)
	}()

	return &chain{
		device:        device,
		gateGoroutine: gateDone,
		samples:       samples,
		meterDone:     meterDone,
	}
}

// teeChannel copies every value of in to two new channels. Both outputs
// close when in closes.
func teeChannel(in <-chan link.Telemetry, bufSize int) (<-chan link.Telemetry, <-chan link.Telemetry) {
	if bufSize <= 0 {
		bufSize = link.DefaultBufferSize
	}
	a := make(chan link.Telemetry, bufSize)
	b := make(chan link.Telemetry, bufSize)

	go func() {
		defer close(a)
		defer close(b)
		for t := range in {
			a <- t
			b <- t
		}
	}()

	return a, b
}
