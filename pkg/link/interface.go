// Package link connects the host to a voice: the serial line protocol, the
// firmware device and a simulated device that renders audio locally.
package link

import "time"

// Device defines the interface for voice devices (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan Telemetry
	Glide(hz float32, d time.Duration) error
	Note(d time.Duration) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Sim implements Device.
var _ Device = (*Sim)(nil)
