package sample

import (
	"log"
	"time"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/link"
	"github.com/itohio/gocuttlefish/pkg/output"
)

// Sample represents a telemetry line in display units.
type Sample struct {
	Timestamp time.Time
	Freq      float64 // Oscillator frequency (Hz)
	Level     float64 // Envelope level (0-1)
	Output    float64 // Last output sample around the bias (-1 to 1)
	Gate      bool
}

// Converter is a function type that converts a Telemetry channel to a Sample channel.
type Converter func(in <-chan link.Telemetry) <-chan Sample

// NewConverter creates a converter function that transforms Telemetry to Sample.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan link.Telemetry) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for t := range in {
				select {
				case out <- convertSample(t, &cfg.Audio):
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// convertSample converts Telemetry to Sample using the output range in cfg.
func convertSample(t link.Telemetry, cfg *config.AudioConfig) Sample {
	return Sample{
		Timestamp: t.Timestamp,
		Freq:      float64(t.Freq),
		Level:     float64(t.Level) / link.MaxLevel,
		Output:    float64(output.DutyToFloat(t.Duty, cfg.Bias, cfg.PWMResolution)),
		Gate:      t.Gate,
	}
}
