// Package audio plays the synthesized start, eat and game-over cues.
package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	SampleRate    = beep.SampleRate(44100)
	DefaultVolume = 0.3
)

// Player turns run notifications into sounds. It is safe to use before (or
// without) Init; cues are then dropped.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	enabled     bool
	volume      float64
	log         *slog.Logger
}

func NewPlayer(log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	return &Player{
		mixer:   &beep.Mixer{},
		enabled: true,
		volume:  DefaultVolume,
		log:     log.With("component", "audio"),
	}
}

// Init opens the speaker. On failure the player stays silent and the error
// is returned for logging only.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		p.log.Warn("speaker unavailable, audio disabled", "err", err)
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on
	if !on && p.initialized {
		speaker.Lock()
		p.mixer.Clear()
		speaker.Unlock()
	}
}

// Toggle flips mute and returns the new enabled state.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	on := !p.enabled
	p.mu.Unlock()
	p.SetEnabled(on)
	return on
}

func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// SetVolume sets the master gain, clamped to [0,1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(v, 0), 1)
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play queues c on the mixer and returns immediately.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || !p.enabled {
		return
	}
	s := Sound(c, SampleRate, p.volume)
	if s == nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

func (p *Player) OnGameStarted()      { p.Play(CueStart) }
func (p *Player) OnItemConsumed()     { p.Play(CueEat) }
func (p *Player) OnGameOver(int, int) { p.Play(CueGameOver) }

// Close silences anything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
