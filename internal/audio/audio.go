package audio

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

const DefaultSampleRate = beep.SampleRate(44100)

// Nop is used when audio is disabled.
type Nop struct{}

func (Nop) Note(*game.Note, float64) {}
func (Nop) Error()                   {}

// Speaker plays feedback on the default audio device. Playback is mixed by
// the speaker goroutine, so calls return immediately.
type Speaker struct {
	rate beep.SampleRate
}

func NewSpeaker(rate beep.SampleRate) (*Speaker, error) {
	if err := speaker.Init(rate, rate.N(time.Second/30)); nil != err {
		return nil, fmt.Errorf("unable to open audio device: %w", err)
	}
	return &Speaker{rate: rate}, nil
}

// Voice renders a note with its instrument, volume and a pan in [0, 1].
func Voice(sr beep.SampleRate, n *game.Note, pan float64) beep.Streamer {
	freq := n.Pitch.Frequency(n.Octave)
	volume := float64(n.Volume) / 100

	var s beep.Streamer
	switch n.Instrument {
	case game.ElectroGuitar:
		s = Guitar(sr, freq, n.Duration, volume)
	default:
		s = Piano(sr, freq, n.Duration, volume)
	}
	return &effects.Pan{Streamer: s, Pan: clampPan(pan)*2 - 1}
}

func clampPan(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (s *Speaker) Note(n *game.Note, pan float64) {
	speaker.Play(Voice(s.rate, n, pan))
}

func (s *Speaker) Error() {
	speaker.Play(Buzz(s.rate))
}
