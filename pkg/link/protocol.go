package link

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxLevel is the telemetry level of a voice at full volume (Q8n8 one).
const MaxLevel = 256

// CommandKind selects what a Command does. The value is the command's
// leading byte on the wire.
type CommandKind byte

const (
	// CmdGlide moves the voice frequency over a duration.
	CmdGlide CommandKind = 'g'
	// CmdNote opens the voice gate for a duration.
	CmdNote CommandKind = 'n'
)

// Command is a host to MCU request.
type Command struct {
	Kind     CommandKind
	Freq     float32       // Target frequency (Hz), glide only
	Duration time.Duration // Glide time or note length, millisecond resolution
}

// Telemetry is one MCU to host status line, sent once per control tick
// (or decimated).
type Telemetry struct {
	Timestamp time.Time
	Freq      float32 // Oscillator frequency (Hz)
	Level     uint16  // Envelope level, 0-MaxLevel
	Duty      uint16  // Last PWM duty written
	Gate      bool    // Note sounding
}

// FormatCommand encodes a command.
// Format: g<freqHz>,<millis> or n<millis>, newline terminated.
// Example: g440.00,500
func FormatCommand(c Command) (string, error) {
	ms := c.Duration.Milliseconds()
	if ms < 0 {
		return "", fmt.Errorf("negative duration: %v", c.Duration)
	}
	switch c.Kind {
	case CmdGlide:
		if c.Freq < 0 {
			return "", fmt.Errorf("negative frequency: %v", c.Freq)
		}
		return "g" + strconv.FormatFloat(float64(c.Freq), 'f', 2, 32) + "," + strconv.FormatInt(ms, 10) + "\n", nil
	case CmdNote:
		return "n" + strconv.FormatInt(ms, 10) + "\n", nil
	default:
		return "", fmt.Errorf("unknown command %q", byte(c.Kind))
	}
}

// ParseCommand decodes a command line. Surrounding whitespace is ignored.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, fmt.Errorf("empty command")
	}

	kind, args := CommandKind(line[0]), line[1:]
	switch kind {
	case CmdGlide:
		freqStr, msStr, ok := strings.Cut(args, ",")
		if !ok {
			return Command{}, fmt.Errorf("invalid glide command: expected g<freq>,<millis>")
		}
		freq, err := strconv.ParseFloat(freqStr, 32)
		if err != nil {
			return Command{}, fmt.Errorf("invalid frequency: %w", err)
		}
		if freq < 0 {
			return Command{}, fmt.Errorf("frequency out of range: %v", freq)
		}
		d, err := parseMillis(msStr)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdGlide, Freq: float32(freq), Duration: d}, nil
	case CmdNote:
		d, err := parseMillis(args)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdNote, Duration: d}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", line[0])
	}
}

func parseMillis(s string) (time.Duration, error) {
	ms, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// AppendTelemetry appends the encoded telemetry line to dst.
// Format: unix_micros,freq,level,duty,gate
// Example: 1234567890123,440.00,256,244,1
func AppendTelemetry(dst []byte, t Telemetry) []byte {
	dst = strconv.AppendInt(dst, t.Timestamp.UnixMicro(), 10)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, float64(t.Freq), 'f', 2, 32)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(t.Level), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(t.Duty), 10)
	if t.Gate {
		dst = append(dst, ",1\n"...)
	} else {
		dst = append(dst, ",0\n"...)
	}
	return dst
}

// FormatTelemetry encodes a telemetry line.
func FormatTelemetry(t Telemetry) string {
	return string(AppendTelemetry(nil, t))
}

// ParseTelemetry decodes a telemetry line.
func ParseTelemetry(line string) (Telemetry, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 5 {
		return Telemetry{}, fmt.Errorf("invalid line format: expected 5 comma-separated values, got %d", len(parts))
	}

	// Parse timestamp (unix microseconds)
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Telemetry{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	freq, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return Telemetry{}, fmt.Errorf("invalid frequency: %w", err)
	}

	level, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return Telemetry{}, fmt.Errorf("invalid level: %w", err)
	}
	if level > MaxLevel {
		return Telemetry{}, fmt.Errorf("level out of range: %d (max %d)", level, MaxLevel)
	}

	duty, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return Telemetry{}, fmt.Errorf("invalid duty: %w", err)
	}

	var gate bool
	switch parts[4] {
	case "1":
		gate = true
	case "0":
	default:
		return Telemetry{}, fmt.Errorf("invalid gate: %q", parts[4])
	}

	return Telemetry{
		Timestamp: time.UnixMicro(micros),
		Freq:      float32(freq),
		Level:     uint16(level),
		Duty:      uint16(duty),
		Gate:      gate,
	}, nil
}
