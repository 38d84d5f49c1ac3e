package main

import "machine"

const (
	// Audio configuration
	AUDIO_RATE     = 16384 // Samples per second
	CONTROL_RATE   = 64    // Voice updates per second
	PWM_RESOLUTION = 488   // Duty range; 48MHz / 488 ≈ 98kHz carrier
	START_FREQ     = 220   // Oscillator frequency at power-up (Hz)
	ATTACK_MS      = 20
	RELEASE_MS     = 300

	// Telemetry is sent every TELEMETRY_DIVIDER control ticks
	TELEMETRY_DIVIDER = 1

	// Audio pin, followed by an RC low-pass filter
	PIN_AUDIO = machine.D10

	// Gate indicator
	PIN_LED = machine.LED

	// Serial configuration
	// Format "unix_micros,freq,level,duty,gate\n"
	// Example: "1234567890123456,16384.00,256,488,1\n" = ~40 bytes max per line
	// 64 lines/sec * 40 bytes/line = 2,560 bytes/sec
	// UART 8N1: 10 bits/byte = 25,600 baud minimum
	// 115200 provides ~4.5x headroom
	UART_BAUD_RATE = 115200
)
