package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Audio       AudioConfig       `yaml:"audio"`
	Voice       VoiceConfig       `yaml:"voice"`
	Output      OutputConfig      `yaml:"output"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Sim         SimConfig         `yaml:"sim"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// AudioConfig contains the engine rates and PWM output range.
type AudioConfig struct {
	AudioRate     uint32 `yaml:"audio_rate"`     // Sample rate (Hz)
	ControlRate   uint32 `yaml:"control_rate"`   // UpdateControl rate (Hz)
	PWMResolution uint16 `yaml:"pwm_resolution"` // PWM period in timer counts
	Bias          uint16 `yaml:"bias"`           // Duty value for silence
	BufferSize    int    `yaml:"buffer_size"`    // Samples buffered ahead of the output
}

// VoiceConfig contains the voice parameters.
type VoiceConfig struct {
	Waveform  string        `yaml:"waveform"`   // sin, triangle, saw or square
	StartFreq float32       `yaml:"start_freq"` // Initial frequency (Hz)
	Glide     time.Duration `yaml:"glide"`      // Default glide time
	Attack    time.Duration `yaml:"attack"`
	Release   time.Duration `yaml:"release"`
	Note      time.Duration `yaml:"note"` // Default note length
}

// OutputConfig selects where simulated audio goes.
type OutputConfig struct {
	Backend string `yaml:"backend"` // "oto" or "none"
	Volume  int    `yaml:"volume"`  // 0-100
}

// MeasurementConfig contains telemetry display and analysis parameters.
type MeasurementConfig struct {
	WindowSeconds   float64 `yaml:"window_seconds"`
	NoteThreshold   float64 `yaml:"note_threshold"`    // Level above which a note is sounding (0-1)
	MinNoteDuration float64 `yaml:"min_note_duration"` // Minimum note duration in seconds (filters clicks)
	AverageSamples  int     `yaml:"average_samples"`   // Number of samples to average (0 = disabled, default)
}

// SimConfig contains simulated device configuration.
type SimConfig struct {
	Tick            time.Duration `yaml:"tick"`             // Render interval
	TelemetryBuffer int           `yaml:"telemetry_buffer"` // Telemetry channel size
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Audio: AudioConfig{
			AudioRate:     16384,
			ControlRate:   64,
			PWMResolution: 488,
			Bias:          244,
			BufferSize:    256,
		},
		Voice: VoiceConfig{
			Waveform:  "sin",
			StartFreq: 220,
			Glide:     500 * time.Millisecond,
			Attack:    20 * time.Millisecond,
			Release:   300 * time.Millisecond,
			Note:      time.Second,
		},
		Output: OutputConfig{
			Backend: "oto",
			Volume:  50,
		},
		Measurement: MeasurementConfig{
			WindowSeconds:   10,
			NoteThreshold:   0.05,
			MinNoteDuration: 0.05,
			AverageSamples:  0, // No averaging by default
		},
		Sim: SimConfig{
			Tick:            20 * time.Millisecond,
			TelemetryBuffer: 500,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Audio.AudioRate == 0 {
		c.Audio.AudioRate = def.Audio.AudioRate
	}
	if c.Audio.ControlRate == 0 {
		c.Audio.ControlRate = def.Audio.ControlRate
	}
	if c.Audio.PWMResolution == 0 {
		c.Audio.PWMResolution = def.Audio.PWMResolution
	}
	if c.Audio.Bias == 0 {
		// Keep silence centered when only the resolution was changed
		c.Audio.Bias = c.Audio.PWMResolution / 2
	}
	if c.Audio.BufferSize == 0 {
		c.Audio.BufferSize = def.Audio.BufferSize
	}

	if c.Voice.Waveform == "" {
		c.Voice.Waveform = def.Voice.Waveform
	}
	if c.Voice.StartFreq == 0 {
		c.Voice.StartFreq = def.Voice.StartFreq
	}
	if c.Voice.Glide == 0 {
		c.Voice.Glide = def.Voice.Glide
	}
	if c.Voice.Attack == 0 {
		c.Voice.Attack = def.Voice.Attack
	}
	if c.Voice.Release == 0 {
		c.Voice.Release = def.Voice.Release
	}
	if c.Voice.Note == 0 {
		c.Voice.Note = def.Voice.Note
	}

	if c.Output.Backend == "" {
		c.Output.Backend = def.Output.Backend
	}

	if c.Measurement.WindowSeconds == 0 {
		c.Measurement.WindowSeconds = def.Measurement.WindowSeconds
	}
	if c.Measurement.NoteThreshold == 0 {
		c.Measurement.NoteThreshold = def.Measurement.NoteThreshold
	}

	if c.Sim.Tick == 0 {
		c.Sim.Tick = def.Sim.Tick
	}
	if c.Sim.TelemetryBuffer == 0 {
		c.Sim.TelemetryBuffer = def.Sim.TelemetryBuffer
	}
}
