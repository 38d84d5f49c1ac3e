package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the firmware console.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the telemetry channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the voice firmware.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan Telemetry
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		samples:  make(chan Telemetry, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading telemetry.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in readTelemetry: %v", r)
			}
		}()
		readTelemetry(d.ctx, port, d.samples)
	}()

	return nil
}

// Close closes the connection and stops reading telemetry.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.samples)

	return nil
}

// Samples returns the channel for reading telemetry.
func (d *Serial) Samples() <-chan Telemetry {
	return d.samples
}

// Glide asks the firmware to move to hz over dur.
func (d *Serial) Glide(hz float32, dur time.Duration) error {
	return d.send(Command{Kind: CmdGlide, Freq: hz, Duration: dur})
}

// Note asks the firmware to sound a note for dur.
func (d *Serial) Note(dur time.Duration) error {
	return d.send(Command{Kind: CmdNote, Duration: dur})
}

func (d *Serial) send(c Command) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	return writeCommand(d.conn, c)
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func writeCommand(w io.Writer, c Command) error {
	line, err := FormatCommand(c)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// readTelemetry reads lines from r and parses them into out until r ends or
// ctx is cancelled. Lines that fail to parse are logged and skipped. The
// firmware also echoes free-form diagnostics, which end up there too.
func readTelemetry(ctx context.Context, r io.Reader, out chan<- Telemetry) {
	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && ctx.Err() == nil {
				log.Printf("Error reading from serial port: %v", err)
			}
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		t, err := ParseTelemetry(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		// Non-blocking send
		select {
		case out <- t:
		case <-ctx.Done():
			return
		default:
			log.Printf("Telemetry channel full, dropping sample")
		}
	}
}
