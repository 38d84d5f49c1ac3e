package sample

import (
	"log"
	"time"

	"github.com/itohio/gocuttlefish/pkg/config"
	"github.com/itohio/gocuttlefish/pkg/link"
)

// averagingInterval is how often an averaging converter emits.
const averagingInterval = 100 * time.Millisecond

// NewAveragingConverter creates a converter that averages the last N Telemetry
// lines and emits the result periodically. This smooths the frequency and
// level traces for display.
func NewAveragingConverter(cfg *config.Config, windowSize int, bufSize int) Converter {
	if windowSize <= 0 {
		windowSize = 1 // No averaging if invalid
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan link.Telemetry) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var buffer []link.Telemetry
			ticker := time.NewTicker(averagingInterval)
			defer ticker.Stop()

			for {
				select {
				case t, ok := <-in:
					if !ok {
						// Input closed, output any remaining samples
						if len(buffer) > 0 {
							select {
							case out <- averageSamples(buffer, &cfg.Audio):
							default:
							}
						}
						return
					}

					buffer = append(buffer, t)
					if len(buffer) > windowSize {
						buffer = buffer[1:] // Remove oldest
					}

				case <-ticker.C:
					if len(buffer) > 0 {
						select {
						case out <- averageSamples(buffer, &cfg.Audio):
						default:
							log.Printf("Averaging converter output channel full")
						}
					}
				}
			}
		}()

		return out
	}
}

// averageSamples converts and averages a slice of Telemetry.
// Uses the most recent line's timestamp and gate.
func averageSamples(lines []link.Telemetry, cfg *config.AudioConfig) Sample {
	if len(lines) == 0 {
		return Sample{}
	}

	var sum Sample
	for _, t := range lines {
		s := convertSample(t, cfg)
		sum.Freq += s.Freq
		sum.Level += s.Level
		sum.Output += s.Output
	}

	last := lines[len(lines)-1]
	n := float64(len(lines))
	return Sample{
		Timestamp: last.Timestamp,
		Freq:      sum.Freq / n,
		Level:     sum.Level / n,
		Output:    sum.Output / n,
		Gate:      last.Gate,
	}
}
