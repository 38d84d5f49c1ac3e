package link

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/gocuttlefish/pkg/engine"
	"github.com/itohio/gocuttlefish/pkg/output"
	"github.com/itohio/gocuttlefish/pkg/synth"
)

// SimConfig configures a simulated device.
type SimConfig struct {
	Audio      engine.Config
	Voice      synth.VoiceConfig
	Tick       time.Duration // Render interval
	BufferSize int           // Telemetry channel size
}

// Sim renders a voice on the host. Audio goes to a sink and telemetry is
// emitted once per control tick, the same stream the firmware sends.
//
// The voice is only touched by the render goroutine; Glide and Note queue
// commands that are applied before the next control tick.
type Sim struct {
	cfg  SimConfig
	sink output.Sink

	voice *synth.Voice
	eng   *engine.Engine
	chunk []uint16
	start time.Time
	ticks int64

	samples   chan Telemetry
	commands  chan Command
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	connected bool
	dropped   int
}

// NewSim creates a simulated device that plays into sink. The device owns
// sink and closes it on Close. A nil sink discards audio.
func NewSim(cfg SimConfig, sink output.Sink) *Sim {
	if cfg.Tick <= 0 {
		cfg.Tick = 20 * time.Millisecond
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if sink == nil {
		sink = output.Discard{}
	}

	cfg.Audio = cfg.Audio.WithDefaults()
	voiceCfg := cfg.Voice
	voiceCfg.AudioRate = cfg.Audio.AudioRate
	voiceCfg.ControlRate = cfg.Audio.ControlRate
	voice := synth.NewVoice(voiceCfg)
	eng := engine.New(cfg.Audio, voice)

	ctx, cancel := context.WithCancel(context.Background())

	return &Sim{
		cfg:      cfg,
		sink:     sink,
		voice:    voice,
		eng:      eng,
		chunk:    make([]uint16, eng.ControlPeriod()),
		samples:  make(chan Telemetry, cfg.BufferSize),
		commands: make(chan Command, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect starts rendering.
func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("device closed")
	}

	s.connected = true
	s.start = time.Now()

	s.wg.Add(1)
	go s.run()

	return nil
}

// Close stops rendering, closes the sink and then the telemetry channel.
func (s *Sim) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	s.connected = false
	s.cancel()
	s.mu.Unlock()

	// Unblocks a pending sink write
	err := s.sink.Close()
	s.wg.Wait()
	close(s.samples)

	if err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

// Samples returns the channel for reading telemetry.
func (s *Sim) Samples() <-chan Telemetry {
	return s.samples
}

// Glide queues a glide to hz over d.
func (s *Sim) Glide(hz float32, d time.Duration) error {
	if hz < 0 {
		return fmt.Errorf("negative frequency: %v", hz)
	}
	return s.enqueue(Command{Kind: CmdGlide, Freq: hz, Duration: d})
}

// Note queues a note of length d.
func (s *Sim) Note(d time.Duration) error {
	return s.enqueue(Command{Kind: CmdNote, Duration: d})
}

func (s *Sim) enqueue(c Command) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return fmt.Errorf("not connected")
	}

	select {
	case s.commands <- c:
		return nil
	default:
		return fmt.Errorf("command queue full")
	}
}

// IsConnected returns whether the device is currently running.
func (s *Sim) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Dropped returns the number of telemetry lines dropped on a full channel.
func (s *Sim) Dropped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// run renders as many control periods as wall time calls for on every tick.
func (s *Sim) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	rate := float64(s.eng.Config().ControlRate)
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			due := int64(now.Sub(s.start).Seconds() * rate)
			for s.ticks < due {
				if err := s.step(); err != nil {
					if s.ctx.Err() == nil {
						log.Printf("Sim output stopped: %v", err)
					}
					return
				}
			}
		}
	}
}

// step applies queued commands and renders one control period.
func (s *Sim) step() error {
	s.applyCommands()

	s.eng.Render(s.chunk)
	s.ticks++

	s.emit(Telemetry{
		Timestamp: s.clock(),
		Freq:      s.voice.Freq(),
		Level:     uint16(s.voice.Gain()),
		Duty:      s.chunk[len(s.chunk)-1],
		Gate:      s.voice.Gate(),
	})

	return s.sink.Write(s.chunk)
}

func (s *Sim) applyCommands() {
	for {
		select {
		case c := <-s.commands:
			switch c.Kind {
			case CmdGlide:
				s.voice.Glide(c.Freq, c.Duration)
			case CmdNote:
				s.voice.Note(c.Duration)
			}
		default:
			return
		}
	}
}

// clock returns the simulated time at the end of the rendered audio.
func (s *Sim) clock() time.Time {
	rate := int64(s.eng.Config().ControlRate)
	return s.start.Add(time.Duration(s.ticks * int64(time.Second) / rate))
}

func (s *Sim) emit(t Telemetry) {
	select {
	case s.samples <- t:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}
