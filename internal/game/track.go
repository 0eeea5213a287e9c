package game

import (
	"sort"
	"time"
)

type Track struct {
	Name    string
	Hash    string
	Notes   []*Note
	Skipped int // Malformed tokens dropped while parsing

	minOctave, maxOctave int
}

// NewTrack orders the notes by start time, keeping load order for equal
// start times.
func NewTrack(name, hash string, notes []*Note) *Track {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Time < notes[j].Time
	})
	t := &Track{Name: name, Hash: hash, Notes: notes}
	for i, n := range notes {
		if i == 0 || n.Octave < t.minOctave {
			t.minOctave = n.Octave
		}
		if i == 0 || n.Octave > t.maxOctave {
			t.maxOctave = n.Octave
		}
	}
	return t
}

func (t *Track) Empty() bool {
	return nil == t || len(t.Notes) == 0
}

// Prepare computes appear times for the given travel interval and clears
// every outcome.
func (t *Track) Prepare(travel time.Duration) {
	for _, n := range t.Notes {
		n.AppearTime = n.Time - travel
		n.reset()
	}
}

// Reset clears outcomes, keeping appear times.
func (t *Track) Reset() {
	for _, n := range t.Notes {
		n.reset()
	}
}

// Visible returns the notes that have appeared by time now.
func (t *Track) Visible(now time.Duration) []*Note {
	visible := make([]*Note, 0, len(t.Notes))
	for _, n := range t.Notes {
		if n.AppearTime <= now {
			visible = append(visible, n)
		}
	}
	return visible
}

// LastEnd is the latest note end time.
func (t *Track) LastEnd() time.Duration {
	var end time.Duration
	for _, n := range t.Notes {
		if n.End() > end {
			end = n.End()
		}
	}
	return end
}

// Resolved reports whether every note has a terminal outcome.
func (t *Track) Resolved() bool {
	for _, n := range t.Notes {
		if n.Pending() {
			return false
		}
	}
	return true
}

// OctaveRange returns the lowest and highest octave in the track.
func (t *Track) OctaveRange() (int, int) {
	return t.minOctave, t.maxOctave
}

// Clone copies the track with fresh outcome state.
func (t *Track) Clone() *Track {
	nn := make([]*Note, len(t.Notes))
	for i, n := range t.Notes {
		nnn := *n
		nnn.reset()
		nn[i] = &nnn
	}
	c := *t
	c.Notes = nn
	return &c
}
