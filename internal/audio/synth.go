package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	pianoAttack  = 20 * time.Millisecond
	pianoRelease = 50 * time.Millisecond

	guitarAttack  = 10 * time.Millisecond
	guitarDecay   = 100 * time.Millisecond
	guitarSustain = 0.7
	guitarRelease = 100 * time.Millisecond
	guitarDrive   = 2.5
	tremoloRate   = 6.0

	buzzFrequency = 110.0
	buzzLength    = 150 * time.Millisecond
)

// synth renders n samples of wave(t) shaped by env(i, n), as a mono signal
// on both channels.
func synth(n int, sr beep.SampleRate, gain float64, wave func(t float64) float64, env func(i, n int) float64) beep.Streamer {
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		c := 0
		for ; c < len(samples) && i < n; c++ {
			t := float64(i) / float64(sr)
			v := gain * env(i, n) * wave(t)
			samples[c][0] = v
			samples[c][1] = v
			i++
		}
		return c, true
	})
}

// linear builds an attack and release envelope around a flat sustain.
func linear(attack, release int) func(i, n int) float64 {
	return func(i, n int) float64 {
		a := 1.0
		if attack > 0 && i < attack {
			a = float64(i) / float64(attack)
		}
		if release > 0 && n-i <= release {
			a = math.Min(a, float64(n-i-1)/float64(release))
		}
		return math.Max(a, 0)
	}
}

func adsr(attack, decay int, sustain float64, release int) func(i, n int) float64 {
	return func(i, n int) float64 {
		var a float64
		switch {
		case i < attack:
			a = float64(i) / float64(attack)
		case i < attack+decay:
			a = 1 - (1-sustain)*float64(i-attack)/float64(decay)
		default:
			a = sustain
		}
		if release > 0 && n-i <= release {
			a = math.Min(a, sustain*float64(n-i-1)/float64(release))
		}
		return math.Max(a, 0)
	}
}

// Piano is a fundamental with two harmonics.
func Piano(sr beep.SampleRate, freq float64, d time.Duration, volume float64) beep.Streamer {
	wave := func(t float64) float64 {
		return 0.6*math.Sin(2*math.Pi*freq*t) +
			0.2*math.Sin(4*math.Pi*freq*t) +
			0.1*math.Sin(6*math.Pi*freq*t)
	}
	return synth(sr.N(d), sr, volume, wave, linear(sr.N(pianoAttack), sr.N(pianoRelease)))
}

// Guitar mixes a sine and a saw, overdriven and with a slight tremolo.
func Guitar(sr beep.SampleRate, freq float64, d time.Duration, volume float64) beep.Streamer {
	wave := func(t float64) float64 {
		phase := freq*t - math.Floor(freq*t)
		saw := 2*phase - 1
		v := 0.5*math.Sin(2*math.Pi*freq*t) + 0.5*saw
		v = math.Tanh(guitarDrive*v) / math.Tanh(guitarDrive)
		return v * (0.9 + 0.1*math.Sin(2*math.Pi*tremoloRate*t))
	}
	env := adsr(sr.N(guitarAttack), sr.N(guitarDecay), guitarSustain, sr.N(guitarRelease))
	return synth(sr.N(d), sr, volume, wave, env)
}

// Buzz is the short low square wave played for a wrong press.
func Buzz(sr beep.SampleRate) beep.Streamer {
	wave := func(t float64) float64 {
		if math.Sin(2*math.Pi*buzzFrequency*t) >= 0 {
			return 1
		}
		return -1
	}
	return synth(sr.N(buzzLength), sr, 0.3, wave, linear(sr.N(5*time.Millisecond), sr.N(20*time.Millisecond)))
}
