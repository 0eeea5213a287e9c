package audio

import (
	"math"
	"testing"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/score"
	"github.com/faiface/beep"
)

var _ score.Feedback = Nop{}
var _ score.Feedback = &Speaker{}

const rate = beep.SampleRate(8000)

func drain(s beep.Streamer) [][2]float64 {
	out := [][2]float64{}
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestVoices(t *testing.T) {
	voices := map[string]beep.Streamer{
		"piano":  Piano(rate, 440, 500*time.Millisecond, 1),
		"guitar": Guitar(rate, 440, 500*time.Millisecond, 1),
		"buzz":   Buzz(rate),
	}
	lengths := map[string]int{
		"piano":  rate.N(500 * time.Millisecond),
		"guitar": rate.N(500 * time.Millisecond),
		"buzz":   rate.N(buzzLength),
	}
	for name, s := range voices {
		samples := drain(s)
		if len(samples) != lengths[name] {
			t.Errorf("%v: %v samples, want %v", name, len(samples), lengths[name])
		}
		peak := 0.0
		for _, sm := range samples {
			peak = math.Max(peak, math.Abs(sm[0]))
			if math.Abs(sm[0]) > 1 || sm[0] != sm[1] {
				t.Errorf("%v: sample %v out of range", name, sm)
				break
			}
		}
		if peak < 0.1 {
			t.Errorf("%v: peak %v, nearly silent", name, peak)
		}
		if math.Abs(samples[0][0]) > 1e-9 || math.Abs(samples[len(samples)-1][0]) > 1e-9 {
			t.Errorf("%v: does not start and end silent", name)
		}
	}
}

func TestVolumeScales(t *testing.T) {
	loud := drain(Piano(rate, 261.63, 200*time.Millisecond, 1))
	quiet := drain(Piano(rate, 261.63, 200*time.Millisecond, 0.5))
	for i := range loud {
		if math.Abs(loud[i][0]/2-quiet[i][0]) > 1e-9 {
			t.Fatalf("sample %v: %v vs %v", i, loud[i][0], quiet[i][0])
		}
	}
}

func TestVoicePans(t *testing.T) {
	n := &game.Note{Pitch: game.La, Octave: 4, Duration: 100 * time.Millisecond, Volume: 100}
	left := drain(Voice(rate, n, 0))
	right := drain(Voice(rate, n, 1))

	energy := func(s [][2]float64, ch int) (e float64) {
		for _, sm := range s {
			e += sm[ch] * sm[ch]
		}
		return e
	}
	if energy(left, 1) > energy(left, 0)/100 {
		t.Error("pan 0 should be on the left")
	}
	if energy(right, 0) > energy(right, 1)/100 {
		t.Error("pan 1 should be on the right")
	}
}
