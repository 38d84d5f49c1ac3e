//go:build !headless

package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/chewxy/math32"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; it is shared between players.
var (
	sharedMu   sync.Mutex
	sharedCtx  *oto.Context
	sharedRate int
)

// otoContext returns the process audio context, creating it on first use and
// resuming it afterwards.
func otoContext(sampleRate int) (*oto.Context, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedCtx != nil {
		if sharedRate != sampleRate {
			return nil, fmt.Errorf("audio context already open at %dHz, cannot switch to %dHz", sharedRate, sampleRate)
		}
		if err := sharedCtx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume audio context: %w", err)
		}
		return sharedCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	sharedCtx = ctx
	sharedRate = sampleRate
	return ctx, nil
}

// Oto plays duty samples on the host sound card as mono float32.
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	bias       uint16
	resolution uint16
	volume     float32
}

// NewOto opens the default audio device at sampleRate. Duty values are
// centered on bias and scaled by the PWM resolution. Volume is 0-100.
// Only one sample rate can be used per process.
func NewOto(sampleRate int, resolution, bias uint16, volume int) (*Oto, error) {
	ctx, err := otoContext(sampleRate)
	if err != nil {
		return nil, err
	}

	o := &Oto{
		otoCtx:     ctx,
		bias:       bias,
		resolution: resolution,
	}
	o.SetVolume(volume)

	// Persistent player streaming from a pipe
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = ctx.NewPlayer(o.pipeReader)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz mono", sampleRate)
	return o, nil
}

// SetVolume sets the volume (0-100).
func (o *Oto) SetVolume(volume int) {
	volume = max(0, min(100, volume))
	o.mu.Lock()
	o.volume = float32(volume) / 100
	o.mu.Unlock()
}

// Write converts duties to float samples and writes them to the player.
// It blocks until the player has taken the data.
func (o *Oto) Write(duties []uint16) error {
	o.mu.Lock()
	w := o.pipeWriter
	if w == nil {
		o.mu.Unlock()
		return ErrClosed
	}
	buf := make([]byte, len(duties)*4)
	for i, d := range duties {
		v := DutyToFloat(d, o.bias, o.resolution) * o.volume
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(v))
	}
	o.mu.Unlock()

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// Close stops playback and releases the device.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			log.Printf("Warning: failed to suspend audio context: %v", err)
		}
		o.otoCtx = nil
	}
	return nil
}
