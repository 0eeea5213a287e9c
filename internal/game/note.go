package game

import (
	"errors"
	"time"
)

var (
	ErrResolved     = errors.New("note already resolved")
	ErrNotPlayed    = errors.New("note was not played")
	ErrHoldMeasured = errors.New("note hold already measured")
)

type Note struct {
	Pitch      PitchClass
	Octave     int
	Time       time.Duration // The time the note should be hit
	Duration   time.Duration // How long the key should be held
	Volume     uint8         // 0 - 100
	Instrument Instrument

	// This is state
	AppearTime   time.Duration // When the note enters the right edge
	outcome      Outcome
	measured     bool
	BeatAccuracy float64       // 0 - 100, set on release
	HeldDuration time.Duration // How long the key was actually held
}

// End is the time the note's tail reaches the threshold.
func (n *Note) End() time.Duration {
	return n.Time + n.Duration
}

func (n *Note) Outcome() Outcome {
	return n.outcome
}

func (n *Note) Played() bool  { return n.outcome == Played }
func (n *Note) Missed() bool  { return n.outcome == Missed }
func (n *Note) Wrong() bool   { return n.outcome == Wrong }
func (n *Note) Pending() bool { return n.outcome == Pending }

// Resolve sets the terminal outcome. It fails, leaving the note untouched,
// if the note was already resolved.
func (n *Note) Resolve(o Outcome) error {
	if n.outcome != Pending {
		return ErrResolved
	}
	if o == Pending {
		return nil
	}
	n.outcome = o
	return nil
}

// RecordHold stores the measured hold of a played note. It can be called
// once per note.
func (n *Note) RecordHold(held time.Duration, accuracy float64) error {
	if n.outcome != Played {
		return ErrNotPlayed
	}
	if n.measured {
		return ErrHoldMeasured
	}
	n.measured = true
	n.HeldDuration = held
	n.BeatAccuracy = accuracy
	return nil
}

// Measured reports whether a hold was recorded on this note.
func (n *Note) Measured() bool {
	return n.measured
}

// reset clears all per-session state.
func (n *Note) reset() {
	n.outcome = Pending
	n.measured = false
	n.BeatAccuracy = 0
	n.HeldDuration = 0
}
