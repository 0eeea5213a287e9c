package score

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"golang.org/x/exp/constraints"
)

type pressSession struct {
	note  *game.Note
	start time.Duration
}

// Judge matches key presses against a track. It is not safe for concurrent
// use; all calls are expected from the frame loop.
type Judge struct {
	track    *game.Track
	window   Window
	feedback Feedback
	stats    Stats
	presses  [game.NPitch]*pressSession

	override   bool
	instrument game.Instrument

	// Human readable description of the last press
	Last string
}

func NewJudge(track *game.Track, window Window, feedback Feedback) *Judge {
	if nil == feedback {
		feedback = nopFeedback{}
	}
	return &Judge{track: track, window: window, feedback: feedback}
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance is how far the note head is from the threshold at time now,
// positive while the note is still approaching.
func Distance(n *game.Note, now time.Duration) time.Duration {
	return n.Time - now
}

// BeatAccuracy rates a hold against the expected duration: 100 when held at
// least as long, a linear ramp below.
func BeatAccuracy(held, expected time.Duration) float64 {
	if held >= expected {
		return 100
	}
	if expected <= 0 {
		return 100
	}
	return clamp(100*float64(held)/float64(expected), 0, 100)
}

// Stats returns a snapshot of the counters.
func (j *Judge) Stats() Stats {
	return j.stats
}

// Override sounds every correct note with instrument i, and narrows the
// active notes to those of i whenever any of them are in the window.
func (j *Judge) Override(i game.Instrument) {
	j.override = true
	j.instrument = i
}

// Overridden returns the instrument given to Override, if any.
func (j *Judge) Overridden() (game.Instrument, bool) {
	return j.instrument, j.override
}

// Active returns the pending notes within the hit window, in timeline order.
func (j *Judge) Active(now time.Duration) []*game.Note {
	active := []*game.Note{}
	for _, note := range j.track.Notes {
		if !note.Pending() {
			continue
		}
		if abs(Distance(note, now)) < j.window.Hit {
			active = append(active, note)
		}
	}
	if !j.override {
		return active
	}

	same := []*game.Note{}
	for _, note := range active {
		if note.Instrument == j.instrument {
			same = append(same, note)
		}
	}
	// Only notes of other instruments are left, so any of them may match
	if len(same) == 0 {
		return active
	}
	return same
}

// Sweep marks every visible pending note whose tail has passed the
// threshold by more than the miss margin. It returns how many notes were
// newly missed; sweeping again at the same time changes nothing.
func (j *Judge) Sweep(now time.Duration) int {
	missed := 0
	for _, note := range j.track.Visible(now) {
		if !note.Pending() {
			continue
		}
		if now-note.End() > j.window.Miss {
			if err := note.Resolve(game.Missed); nil != err {
				continue
			}
			j.stats.Missed++
			missed++
		}
	}
	return missed
}

// Pan places a note in the stereo field by octave, or by pitch when the
// track spans a single octave.
func (j *Judge) Pan(n *game.Note) float64 {
	lo, hi := j.track.OctaveRange()
	rng := hi - lo
	if rng < 1 {
		rng = 1
	}
	if rng > 1 {
		return 0.1 + 0.8*float64(n.Octave-lo)/float64(rng)
	}
	return 0.1 + 0.8*float64(n.Pitch)/float64(game.NPitch-1)
}

// Press judges a key press of pitch p at time now.
func (j *Judge) Press(p game.PitchClass, now time.Duration) Verdict {
	if !p.Valid() {
		return Verdict{}
	}
	// A second press without a release closes the previous hold first
	if nil != j.presses[p] {
		j.Release(p, now)
	}

	var closest *game.Note
	distance := time.Duration(0)
	for _, note := range j.Active(now) {
		d := abs(Distance(note, now))
		// Strictly less, so the earliest note wins a tie
		if nil == closest || d < distance {
			closest = note
			distance = d
		}
	}

	if nil == closest {
		j.stats.wrong(p)
		j.feedback.Error()
		j.Last = fmt.Sprintf("%v: no notes near threshold", p)
		return Verdict{Outcome: game.Wrong}
	}

	if closest.Pitch != p {
		if err := closest.Resolve(game.Wrong); nil != err {
			return Verdict{Outcome: game.Wrong}
		}
		j.stats.wrong(p)
		j.feedback.Error()
		j.Last = fmt.Sprintf("%v: wrong, expected %v%v", p, closest.Pitch, closest.Octave)
		return Verdict{Outcome: game.Wrong, Note: closest, Distance: distance}
	}

	if err := closest.Resolve(game.Played); nil != err {
		return Verdict{Outcome: game.Wrong}
	}
	j.stats.correct(p)
	j.presses[p] = &pressSession{note: closest, start: now}
	sounded := closest
	if j.override && closest.Instrument != j.instrument {
		n := *closest
		n.Instrument = j.instrument
		sounded = &n
	}
	j.feedback.Note(sounded, j.Pan(closest))
	j.Last = fmt.Sprintf("%v%v, %v from threshold", closest.Pitch, closest.Octave, distance)
	return Verdict{Outcome: game.Played, Note: closest, Distance: distance}
}

// Release ends the hold of pitch p and records its beat accuracy. It
// returns nil when the key had no open hold.
func (j *Judge) Release(p game.PitchClass, now time.Duration) *game.Note {
	if !p.Valid() {
		return nil
	}
	session := j.presses[p]
	if nil == session {
		return nil
	}
	j.presses[p] = nil

	held := now - session.start
	if held < 0 {
		held = 0
	}
	accuracy := BeatAccuracy(held, session.note.Duration)
	if err := session.note.RecordHold(held, accuracy); nil != err {
		return nil
	}
	j.stats.beat(accuracy, session.note.Instrument)
	return session.note
}

// Holding reports whether pitch p has an open hold.
func (j *Judge) Holding(p game.PitchClass) bool {
	return p.Valid() && nil != j.presses[p]
}

// Apply feeds a key event to Press or Release.
func (j *Judge) Apply(ev game.KeyEvent) {
	if ev.Pressed {
		j.Press(ev.Pitch, ev.Time)
	} else {
		j.Release(ev.Pitch, ev.Time)
	}
}
