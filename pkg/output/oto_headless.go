//go:build headless

package output

import "log"

// Oto is a silent stand-in for builds without an audio device.
type Oto struct {
	Discard
}

// NewOto returns a sink that drops samples.
func NewOto(sampleRate int, resolution, bias uint16, volume int) (*Oto, error) {
	log.Printf("Audio output disabled in headless build (%dHz requested)", sampleRate)
	return &Oto{}, nil
}

// SetVolume is a no-op.
func (o *Oto) SetVolume(volume int) {}
