//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"
	"time"

	"github.com/itohio/gocuttlefish/pkg/engine"
	"github.com/itohio/gocuttlefish/pkg/synth"
)

var (
	uart = machine.UART0
	pwm  = machine.TCC0

	pwmChannel uint8
	pwmTop     uint32
	lastDuty   uint16

	voice *synth.Voice
	eng   *engine.Engine
	clock pollTicker

	controlTicks int

	// Serial buffer for reading lines
	serialBuffer [24]byte
	serialPos    int

	// Telemetry line buffer
	lineBuffer [48]byte
)

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Carrier well above the audio rate; the duty carries the sample
	err := pwm.Configure(machine.PWMConfig{
		Period: uint64(PWM_RESOLUTION) * 1e9 / uint64(machine.CPUFrequency()),
	})
	if err != nil {
		println("failed to configure PWM:", err.Error())
		return
	}
	pwmChannel, err = pwm.Channel(PIN_AUDIO)
	if err != nil {
		println("failed to configure audio pin:", err.Error())
		return
	}
	pwmTop = pwm.Top()

	voice = synth.NewVoice(synth.VoiceConfig{
		AudioRate:   AUDIO_RATE,
		ControlRate: CONTROL_RATE,
		StartFreq:   START_FREQ,
		Attack:      ATTACK_MS * time.Millisecond,
		Release:     RELEASE_MS * time.Millisecond,
	})
	eng = engine.New(engine.Config{
		AudioRate:   AUDIO_RATE,
		ControlRate: CONTROL_RATE,
		Resolution:  PWM_RESOLUTION,
	}, engine.HooksFuncs{
		Control: updateControl,
		Audio:   voice.UpdateAudio,
	})

	if err := eng.Start(&clock, engine.SampleWriterFunc(writeDuty)); err != nil {
		println("failed to start audio:", err.Error())
		return
	}

	// Main loop
	for {
		processSerial()

		// Keep the buffer full, then play whatever is due
		eng.AudioHook()
		clock.Poll(time.Now())
	}
}

// updateControl advances the voice and reports it.
func updateControl() {
	voice.UpdateControl()

	if voice.Gate() {
		PIN_LED.High()
	} else {
		PIN_LED.Low()
	}

	controlTicks++
	if controlTicks >= TELEMETRY_DIVIDER {
		controlTicks = 0
		outputTelemetry()
	}
}

// writeDuty loads one sample into the PWM compare register.
func writeDuty(duty uint16) {
	lastDuty = duty
	pwm.Set(pwmChannel, uint32(duty)*pwmTop/PWM_RESOLUTION)
}

// outputTelemetry prints the voice state.
// Output format: "unix_micros,freq,level,duty,gate\n"
// Example: "1234567890123,440.00,256,300,1\n"
func outputTelemetry() {
	b := lineBuffer[:0]
	b = strconv.AppendInt(b, time.Now().UnixMicro(), 10)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(voice.Freq()), 'f', 2, 32)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(voice.Gain()), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(lastDuty), 10)
	if voice.Gate() {
		b = append(b, ",1\n"...)
	} else {
		b = append(b, ",0\n"...)
	}
	uart.Write(b)
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			if serialPos > 0 {
				runCommand(serialBuffer[:serialPos])
			}
			serialPos = 0
			continue
		}

		// Ignore whitespace
		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			// Line too long - drop it
			serialPos = 0
		}
	}
}

// runCommand handles "g<freq>,<millis>" and "n<millis>". Malformed lines
// are ignored.
func runCommand(line []byte) {
	switch line[0] {
	case 'g':
		comma := -1
		for i, c := range line {
			if c == ',' {
				comma = i
				break
			}
		}
		if comma < 0 {
			return
		}
		hz, err := strconv.ParseFloat(string(line[1:comma]), 32)
		if err != nil || hz < 0 {
			return
		}
		ms, err := strconv.ParseUint(string(line[comma+1:]), 10, 32)
		if err != nil {
			return
		}
		voice.Glide(float32(hz), time.Duration(ms)*time.Millisecond)
	case 'n':
		ms, err := strconv.ParseUint(string(line[1:]), 10, 32)
		if err != nil {
			return
		}
		voice.Note(time.Duration(ms) * time.Millisecond)
	}
}
