package game

import (
	"fmt"
	"math"
	"strings"
)

// PitchClass is a scale degree, independent of octave.
type PitchClass uint8

const (
	Do PitchClass = iota
	Re
	Mi
	Fa
	Sol
	La
	Si
)

// NPitch is the number of pitch classes, and so the number of keys.
const NPitch = 7

var pitchNames = [NPitch]string{"Do", "Re", "Mi", "Fa", "Sol", "La", "Si"}

// Octave 4 reference row
var pitchFreqs = [NPitch]float64{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88}

// Semitones above the octave's C, used for MIDI keys
var pitchSemitones = [NPitch]uint8{0, 2, 4, 5, 7, 9, 11}

func (p PitchClass) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PitchClass(%d)", uint8(p))
	}
	return pitchNames[p]
}

func (p PitchClass) Valid() bool {
	return p < NPitch
}

// Frequency of this pitch class in the given octave.
func (p PitchClass) Frequency(octave int) float64 {
	return pitchFreqs[p] * math.Pow(2, float64(octave-4))
}

func (p PitchClass) Semitone() uint8 {
	return pitchSemitones[p]
}

// ParsePitchClass matches a name such as "Sol" case-insensitively.
func ParsePitchClass(name string) (PitchClass, error) {
	for i, n := range pitchNames {
		if strings.EqualFold(n, name) {
			return PitchClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pitch class %q", name)
}

// PitchClasses in scale order
func PitchClasses() []PitchClass {
	ps := make([]PitchClass, NPitch)
	for i := range ps {
		ps[i] = PitchClass(i)
	}
	return ps
}
