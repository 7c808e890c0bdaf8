package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
)

// sweep is an oscillator whose frequency moves linearly from one value to
// another over its duration. A constant tone is a sweep with from == to.
type sweep struct {
	from, to float64
	wave     Wave
	rate     beep.SampleRate
	phase    float64
	pos      int
	total    int
}

func newSweep(from, to float64, d time.Duration, wave Wave, rate beep.SampleRate) *sweep {
	return &sweep{from: from, to: to, wave: wave, rate: rate, total: rate.N(d)}
}

func newTone(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) *sweep {
	return newSweep(freq, freq, d, wave, rate)
}

func (s *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.pos >= s.total {
			return i, i > 0
		}

		var v float64
		switch s.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * s.phase)
		case WaveSquare:
			v = 1
			if s.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (s.phase - 0.5)
		}
		samples[i][0] = v
		samples[i][1] = v

		freq := s.from + (s.to-s.from)*float64(s.pos)/float64(s.total)
		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// decay fades a stream linearly to silence over d, which keeps the note
// ends from clicking.
type decay struct {
	s     beep.Streamer
	pos   int
	total int
}

func newDecay(s beep.Streamer, d time.Duration, rate beep.SampleRate) *decay {
	return &decay{s: s, total: rate.N(d)}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 0.0
		if d.pos < d.total {
			g = 1 - float64(d.pos)/float64(d.total)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		d.pos++
	}
	return n, ok
}

func (d *decay) Err() error { return d.s.Err() }

// withVolume scales s by a linear gain in [0,1]. beep's volume effect is
// logarithmic, and log2(0) is -Inf, so zero maps to Silent.
func withVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Cue identifies one of the game's sounds.
type Cue int

const (
	CueStart Cue = iota
	CueEat
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueStart:
		return "start"
	case CueEat:
		return "eat"
	case CueGameOver:
		return "game_over"
	}
	return "unknown"
}

const (
	arpeggioStep = 100 * time.Millisecond
	arpeggioNote = 200 * time.Millisecond
	eatLength    = 100 * time.Millisecond
	overLength   = 500 * time.Millisecond
)

var arpeggio = [...]float64{440, 554, 659}

// Sound builds a fresh streamer for c at the given linear gain.
func Sound(c Cue, rate beep.SampleRate, gain float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueStart:
		notes := make([]beep.Streamer, 0, len(arpeggio))
		for i, f := range arpeggio {
			note := newDecay(newTone(f, arpeggioNote, WaveSquare, rate), arpeggioNote, rate)
			notes = append(notes, beep.Seq(beep.Silence(rate.N(time.Duration(i)*arpeggioStep)), note))
		}
		s = beep.Mix(notes...)
	case CueEat:
		s = newDecay(newSweep(600, 1000, eatLength, WaveSine, rate), eatLength, rate)
	case CueGameOver:
		s = newDecay(newSweep(200, 50, overLength, WaveSaw, rate), overLength, rate)
	default:
		return nil
	}
	return withVolume(s, gain)
}
