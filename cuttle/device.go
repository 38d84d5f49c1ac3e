package main

import (
	"fmt"
	"log"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/engine"
	"github.com/itohio/gocuttlefish/pkg/link"
	"github.com/itohio/gocuttlefish/pkg/output"
	"github.com/itohio/gocuttlefish/pkg/synth"
)

// newDevice creates the device described by cfg. With sim set the voice is
// rendered locally and played through the configured output backend.
func newDevice(cfg *config.Config, sim bool) (link.Device, error) {
	if !sim {
		return link.New(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Sim.TelemetryBuffer), nil
	}

	table, ok := synth.Table(cfg.Voice.Waveform)
	if !ok {
		log.Printf("Unknown waveform %q, using sin", cfg.Voice.Waveform)
	}

	audio := engine.Config{
		AudioRate:   cfg.Audio.AudioRate,
		ControlRate: cfg.Audio.ControlRate,
		Resolution:  cfg.Audio.PWMResolution,
		Bias:        cfg.Audio.Bias,
		BufferSize:  cfg.Audio.BufferSize,
	}.WithDefaults()

	sink, err := output.Open(output.Options{
		Backend:    cfg.Output.Backend,
		SampleRate: int(audio.AudioRate),
		Resolution: audio.Resolution,
		Bias:       audio.Bias,
		Volume:     cfg.Output.Volume,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}

	return link.NewSim(link.SimConfig{
		Audio: audio,
		Voice: synth.VoiceConfig{
			Table:     table,
			StartFreq: cfg.Voice.StartFreq,
			Attack:    cfg.Voice.Attack,
			Release:   cfg.Voice.Release,
		},
		Tick:       cfg.Sim.Tick,
		BufferSize: cfg.Sim.TelemetryBuffer,
	}, sink), nil
}
